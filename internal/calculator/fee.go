package calculator

import "github.com/shopspring/decimal"

var (
	// FeeRate is the regulatory levy charged on the gross value of a trade.
	FeeRate = decimal.RequireFromString("0.000325")
	// MinimumFee is charged on any trade whose levy would round below one cent.
	MinimumFee = decimal.RequireFromString("0.01")
)

// Fee returns max(gross*FeeRate, MinimumFee) rounded to cents.
// A non-positive gross value carries no fee.
func Fee(gross decimal.Decimal) decimal.Decimal {
	if gross.Sign() <= 0 {
		return decimal.Zero
	}
	fee := gross.Mul(FeeRate).Round(MoneyPlaces)
	if fee.LessThan(MinimumFee) {
		return MinimumFee
	}
	return fee
}

// MaxAffordableQuantity is the largest quantity, at unitPrice, whose gross value
// plus fee fits in cash. It returns zero when cash is below one cent or the price
// is not positive.
func MaxAffordableQuantity(cash, unitPrice decimal.Decimal) decimal.Decimal {
	if cash.LessThan(MinimumFee) || unitPrice.Sign() <= 0 {
		return decimal.Zero
	}
	gross := cash.Div(decimal.NewFromInt(1).Add(FeeRate)).RoundDown(MoneyPlaces)
	qty := gross.Div(unitPrice).RoundDown(QuantityPlaces)

	// The minimum fee can still push a tiny order over the budget.
	g := qty.Mul(unitPrice).Round(MoneyPlaces)
	if g.Add(Fee(g)).GreaterThan(cash) {
		qty = cash.Sub(MinimumFee).Div(unitPrice).RoundDown(QuantityPlaces)
	}
	if qty.Sign() < 0 {
		return decimal.Zero
	}
	return qty
}
