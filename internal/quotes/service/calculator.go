package service

import (
	"circletel_backend/internal/quotes/transport"
	"circletel_backend/platform/money"

	"github.com/shopspring/decimal"
)

// VATRate is the South African statutory VAT rate.
var VATRate = decimal.RequireFromString("0.15")

var hundred = decimal.NewFromInt(100)

// DiscountKind tags how a monthly discount is expressed.
type DiscountKind int

const (
	DiscountNone DiscountKind = iota
	DiscountPercent
	DiscountFlatAmount
)

// Discount is a monthly discount resolved before pricing.
type Discount struct {
	Kind   DiscountKind
	Value  float64
	Reason *string
}

// NoDiscount prices at list.
func NoDiscount() Discount { return Discount{Kind: DiscountNone} }

// PercentDiscount takes percent of the monthly subtotal.
func PercentDiscount(percent float64, reason *string) Discount {
	return Discount{Kind: DiscountPercent, Value: percent, Reason: reason}
}

// FlatDiscount takes a fixed Rand amount off the monthly subtotal.
func FlatDiscount(amount float64, reason *string) Discount {
	return Discount{Kind: DiscountFlatAmount, Value: amount, Reason: reason}
}

// ResolveDiscount applies the PercentTakesPrecedence policy to the two
// stored discount fields: a positive percent wins over a positive amount,
// and neither being positive means no discount.
func ResolveDiscount(percent, amount float64, reason *string) Discount {
	switch {
	case percent > 0:
		return PercentDiscount(percent, reason)
	case amount > 0:
		return FlatDiscount(amount, reason)
	default:
		return NoDiscount()
	}
}

// CalculatePricingBreakdown prices items over the contract term. Every
// intermediate value is rounded to cents so that the totals add up exactly.
// An empty item list yields a zero breakdown; the term is assumed valid.
func CalculatePricingBreakdown(items []transport.LineItem, term transport.ContractTerm, discount Discount) transport.PricingBreakdown {
	subtotalMonthly := decimal.Zero
	subtotalInstallation := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotalMonthly = subtotalMonthly.Add(decimal.NewFromFloat(item.MonthlyPrice).Mul(qty))
		subtotalInstallation = subtotalInstallation.Add(decimal.NewFromFloat(item.InstallationPrice).Mul(qty))
	}
	subtotalMonthly = money.Round(subtotalMonthly)
	subtotalInstallation = money.Round(subtotalInstallation)

	discountAmount := resolveDiscountAmount(subtotalMonthly, discount)
	monthlyAfterDiscount := money.Round(subtotalMonthly.Sub(discountAmount))

	vatMonthly := money.Round(monthlyAfterDiscount.Mul(VATRate))
	vatInstallation := money.Round(subtotalInstallation.Mul(VATRate))

	totalMonthly := money.Round(monthlyAfterDiscount.Add(vatMonthly))
	totalInstallation := money.Round(subtotalInstallation.Add(vatInstallation))
	totalContractValue := money.Round(totalMonthly.Mul(decimal.NewFromInt(int64(term))).Add(totalInstallation))

	discountPercent := 0.0
	if discount.Kind == DiscountPercent && discountAmount.IsPositive() {
		discountPercent = discount.Value
	} else if discountAmount.IsPositive() {
		discountPercent = CalculateDiscountPercent(subtotalMonthly.InexactFloat64(), discountAmount.InexactFloat64())
	}

	var reason *string
	if discountAmount.IsPositive() {
		reason = discount.Reason
	}

	return transport.PricingBreakdown{
		SubtotalMonthly:      subtotalMonthly.InexactFloat64(),
		SubtotalInstallation: subtotalInstallation.InexactFloat64(),
		DiscountPercent:      discountPercent,
		DiscountAmount:       discountAmount.InexactFloat64(),
		DiscountReason:       reason,
		MonthlyAfterDiscount: monthlyAfterDiscount.InexactFloat64(),
		VatMonthly:           vatMonthly.InexactFloat64(),
		VatInstallation:      vatInstallation.InexactFloat64(),
		TotalMonthly:         totalMonthly.InexactFloat64(),
		TotalInstallation:    totalInstallation.InexactFloat64(),
		TotalUpfront:         totalInstallation.InexactFloat64(),
		TotalContractValue:   totalContractValue.InexactFloat64(),
	}
}

// resolveDiscountAmount turns the tagged discount into cents, clamped to [0, subtotal].
func resolveDiscountAmount(subtotal decimal.Decimal, discount Discount) decimal.Decimal {
	var amount decimal.Decimal
	switch discount.Kind {
	case DiscountPercent:
		amount = subtotal.Mul(decimal.NewFromFloat(discount.Value)).Div(hundred)
	case DiscountFlatAmount:
		amount = decimal.NewFromFloat(discount.Value)
	default:
		return decimal.Zero
	}

	amount = money.Round(amount)
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

// CalculateDiscountPercent converts an amount into a percentage of subtotal.
func CalculateDiscountPercent(subtotal, discountAmount float64) float64 {
	if subtotal == 0 {
		return 0
	}
	pct := decimal.NewFromFloat(discountAmount).Div(decimal.NewFromFloat(subtotal)).Mul(hundred)
	return money.Round(pct).InexactFloat64()
}

// CalculateDiscountAmount converts a percentage of subtotal into an amount.
func CalculateDiscountAmount(subtotal, percent float64) float64 {
	if subtotal == 0 {
		return 0
	}
	amount := decimal.NewFromFloat(subtotal).Mul(decimal.NewFromFloat(percent)).Div(hundred)
	return money.Round(amount).InexactFloat64()
}

// ValidateDiscount checks a proposed discount against a monthly subtotal.
func ValidateDiscount(subtotal, percent, amount float64) transport.DiscountValidation {
	if percent < 0 || percent > 100 {
		return transport.DiscountValidation{Valid: false, Error: "Discount percentage must be between 0 and 100"}
	}
	if amount < 0 {
		return transport.DiscountValidation{Valid: false, Error: "Discount amount cannot be negative"}
	}
	if amount > subtotal {
		return transport.DiscountValidation{Valid: false, Error: "Discount amount cannot exceed subtotal"}
	}
	return transport.DiscountValidation{Valid: true}
}

// ComparePricing diffs current against previous. Percentages are zero
// when the previous value is zero.
func ComparePricing(current, previous transport.PricingBreakdown) transport.PricingComparison {
	monthlyDiff := money.RoundToTwoDecimals(current.TotalMonthly - previous.TotalMonthly)
	contractDiff := money.RoundToTwoDecimals(current.TotalContractValue - previous.TotalContractValue)

	return transport.PricingComparison{
		MonthlyDiff:         monthlyDiff,
		MonthlyDiffPercent:  percentOf(monthlyDiff, previous.TotalMonthly),
		ContractDiff:        contractDiff,
		ContractDiffPercent: percentOf(contractDiff, previous.TotalContractValue),
		IsCheaper:           monthlyDiff < 0,
	}
}

// CalculatePricePerMbps returns the monthly price per downstream Mbps.
func CalculatePricePerMbps(price float64, speedMbps int) float64 {
	if speedMbps <= 0 {
		return 0
	}
	return money.Round(decimal.NewFromFloat(price).Div(decimal.NewFromInt(int64(speedMbps)))).InexactFloat64()
}

func percentOf(diff, base float64) float64 {
	if base == 0 {
		return 0
	}
	return money.Round(decimal.NewFromFloat(diff).Div(decimal.NewFromFloat(base)).Mul(hundred)).InexactFloat64()
}
