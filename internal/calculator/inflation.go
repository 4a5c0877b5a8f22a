package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// InflationTable maps "YYYY-MM" to a monthly consumer price index rate
// expressed as a fraction (0.0042 is 0.42%).
type InflationTable struct {
	Rates    map[string]decimal.Decimal
	Fallback decimal.Decimal
}

// DefaultInflationTable carries the published IPCA monthly rates for 2024
// and a 0.5% monthly fallback for every other month.
func DefaultInflationTable() InflationTable {
	rates := map[string]string{
		"2024-01": "0.0042", "2024-02": "0.0041", "2024-03": "0.0016",
		"2024-04": "0.0038", "2024-05": "0.0044", "2024-06": "0.0021",
		"2024-07": "0.0017", "2024-08": "0.0024", "2024-09": "0.0026",
		"2024-10": "0.0021", "2024-11": "0.0025", "2024-12": "0.0030",
	}
	t := InflationTable{
		Rates:    make(map[string]decimal.Decimal, len(rates)),
		Fallback: decimal.RequireFromString("0.005"),
	}
	for month, rate := range rates {
		t.Rates[month] = decimal.RequireFromString(rate)
	}
	return t
}

// Rate returns the monthly rate for the month containing at.
func (t InflationTable) Rate(at time.Time) decimal.Decimal {
	if r, ok := t.Rates[at.UTC().Format("2006-01")]; ok {
		return r
	}
	return t.Fallback
}

// Accumulated compounds the monthly rates of every month from 'from' to 'to'
// inclusive and returns factor - 1. It returns zero when from is after to.
func (t InflationTable) Accumulated(from, to time.Time) decimal.Decimal {
	if from.After(to) {
		return decimal.Zero
	}
	factor := decimal.NewFromInt(1)
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		factor = factor.Mul(decimal.NewFromInt(1).Add(t.Rate(cursor)))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return factor.Sub(decimal.NewFromInt(1))
}

// Deflate expresses a value observed at 'now' in money of 'past'.
func (t InflationTable) Deflate(value decimal.Decimal, past, now time.Time) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(t.Accumulated(past, now))
	return value.DivRound(factor, MoneyPlaces)
}

// Inflate expresses a value observed at 'past' in money of 'now'.
func (t InflationTable) Inflate(value decimal.Decimal, past, now time.Time) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(t.Accumulated(past, now))
	return Money(value.Mul(factor))
}

// RealReturn is (1 + nominal) / (1 + inflation) - 1 where nominal is the growth
// from initial to final. Both inputs and the result are fractions, 4 digits.
func (t InflationTable) RealReturn(initial, final decimal.Decimal, from, to time.Time) decimal.Decimal {
	nominal := decimal.Zero
	if initial.IsPositive() {
		nominal = final.Sub(initial).DivRound(initial, PercentPlaces)
	}
	one := decimal.NewFromInt(1)
	inflation := t.Accumulated(from, to)
	return one.Add(nominal).DivRound(one.Add(inflation), PercentPlaces).Sub(one)
}

// Annualized scales an accumulated rate over months to a yearly rate, linearly.
func Annualized(accumulated decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	return accumulated.Mul(decimal.NewFromInt(12)).DivRound(decimal.NewFromInt(int64(months)), PercentPlaces)
}
