package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"809-555-1234", "8095551234"},
		{"(809) 555 1234", "8095551234"},
		{"+1 809 555 1234", "+18095551234"},
		{"1+809", "1809"},
		{"abc", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
