package utils

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "ledger entry", 20, "ledger entry"},
		{"exact length", "audit", 5, "audit"},
		{"cut", "quarterly audit", 9, "quarterly..."},
		{"zero limit", "audit", 0, "audit"},
		{"negative limit", "audit", -1, "audit"},
		{"multibyte runes", "crème brûlée", 5, "crème..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.limit); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}
