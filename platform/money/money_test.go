package money

import "testing"

func TestRoundToTwoDecimals(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{134.85, 134.85},
		{1.005, 1.01},
		{2.675, 2.68},
		{-1.005, -1.01},
		{0.125, 0.13},
		{-0.125, -0.13},
		{1033.8500000000001, 1033.85},
		{0, 0},
	}
	for _, tc := range cases {
		if got := RoundToTwoDecimals(tc.in); got != tc.want {
			t.Fatalf("RoundToTwoDecimals(%v): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	// en-ZA groups thousands with a no-break space and uses a decimal comma.
	cases := []struct {
		amount float64
		want   string
	}{
		{899, "R 899,00"},
		{1033.85, "R 1\u00a0033,85"},
		{24812.4, "R 24\u00a0812,40"},
		{-12.5, "-R 12,50"},
		{0, "R 0,00"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.amount); got != tc.want {
			t.Fatalf("FormatCurrency(%v): expected %q, got %q", tc.amount, tc.want, got)
		}
	}
}
