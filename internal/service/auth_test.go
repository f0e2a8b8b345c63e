package service

import "testing"

func TestResetBaseURL(t *testing.T) {
	cases := []struct {
		configured string
		fallback   string
		want       string
	}{
		// A configured public URL always wins over the request-derived
		// fallback; the latter comes from forgeable headers.
		{"https://shop.example.com", "http://evil.example", "https://shop.example.com"},
		{"https://shop.example.com/", "http://evil.example", "https://shop.example.com"},
		{"", "http://10.0.0.5:8080", "http://10.0.0.5:8080"},
		{"", "http://10.0.0.5:8080/", "http://10.0.0.5:8080"},
	}
	for _, c := range cases {
		if got := resetBaseURL(c.configured, c.fallback); got != c.want {
			t.Errorf("resetBaseURL(%q, %q) = %q, want %q", c.configured, c.fallback, got, c.want)
		}
	}
}
