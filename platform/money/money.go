// Package money provides rounding and display helpers for Rand amounts.
// This is part of the platform layer and contains no business logic.
package money

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const currencySymbol = "R"

var displayLocale = language.MustParse("en-ZA")

// RoundToTwoDecimals rounds half away from zero to two decimal places.
func RoundToTwoDecimals(x float64) float64 {
	return Round(decimal.NewFromFloat(x)).InexactFloat64()
}

// Round rounds a decimal value half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatCurrency renders an amount in South African Rand for display.
func FormatCurrency(amount float64) string {
	rounded := RoundToTwoDecimals(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	p := message.NewPrinter(displayLocale)
	return sign + currencySymbol + " " + p.Sprintf("%.2f", math.Abs(rounded))
}
