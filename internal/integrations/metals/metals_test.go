package metals

import "testing"

const sampleFeed = `<?xml version="1.0" encoding="windows-1251"?>
<Metall FD1="02/08/2026" FD2="29/08/2026" name="Metall prices">
  <Record Date="27/08/2026" Code="1">
    <Buy>6501,22</Buy>
    <Sell>6501,22</Sell>
  </Record>
  <Record Date="27/08/2026" Code="2">
    <Buy>78,10</Buy>
    <Sell>78,10</Sell>
  </Record>
  <Record Date="28/08/2026" Code="1">
    <Buy>6542,87</Buy>
    <Sell>6542,87</Sell>
  </Record>
</Metall>`

func TestParseGoldRate(t *testing.T) {
	rate, err := parseGoldRate([]byte(sampleFeed))
	if err != nil {
		t.Fatalf("parseGoldRate: %v", err)
	}
	if rate != 6542.87 {
		t.Errorf("rate = %v, want 6542.87 (latest gold record)", rate)
	}
}

func TestParseGoldRateErrors(t *testing.T) {
	if _, err := parseGoldRate([]byte("not xml <")); err == nil {
		t.Error("expected error for malformed XML")
	}
	if _, err := parseGoldRate([]byte(`<Metall><Record Code="2"><Buy>1,0</Buy></Record></Metall>`)); err == nil {
		t.Error("expected error when no gold records present")
	}
	if _, err := parseGoldRate([]byte(`<Metall><Record Code="1"><Sell>1,0</Sell></Record></Metall>`)); err == nil {
		t.Error("expected error when buy element missing")
	}
}
