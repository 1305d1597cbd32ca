package repository

import "testing"

func TestFormatQuoteNumber(t *testing.T) {
	cases := []struct {
		year, seq int
		want      string
	}{
		{2026, 1, "BQ-2026-0001"},
		{2026, 42, "BQ-2026-0042"},
		{2027, 12345, "BQ-2027-12345"},
	}
	for _, tc := range cases {
		if got := FormatQuoteNumber(tc.year, tc.seq); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}
