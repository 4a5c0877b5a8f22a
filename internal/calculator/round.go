// Package calculator holds the pure money math of the application: brokerage fees,
// the monthly capital-gains estimate, per-instrument rentability, portfolio
// aggregation and inflation adjustments.
//
// Every function here is total. Ratios whose denominator is zero or negative
// evaluate to zero instead of failing, so a report can always be rendered.
package calculator

import "github.com/shopspring/decimal"

// Fractional digits used across the package.
const (
	QuantityPlaces int32 = 4
	PricePlaces    int32 = 2
	MoneyPlaces    int32 = 2
	PercentPlaces  int32 = 4
)

var hundred = decimal.NewFromInt(100)

// Money rounds half-up to cents.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// Percent returns num/den*100 with 4 fractional digits, or zero when den <= 0.
func Percent(num, den decimal.Decimal) decimal.Decimal {
	if den.Sign() <= 0 {
		return decimal.Zero
	}
	return num.Mul(hundred).DivRound(den, PercentPlaces)
}
