package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

var (
	// EquityExemptionThreshold is the monthly equity sales volume below which equity gains are not taxed.
	EquityExemptionThreshold = decimal.NewFromInt(20000)
	// EquityTaxRate applies to equity gains in months at or above the threshold.
	EquityTaxRate = decimal.RequireFromString("0.15")
	// FundTaxRate applies to real-estate fund and ETF gains in every month.
	FundTaxRate = decimal.RequireFromString("0.20")
)

// EstimateTax returns the advisory capital-gains tax over a sell history, rounded to cents.
// Transactions of any other kind are ignored.
func EstimateTax(sells []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, m := range monthlyBuckets(sells) {
		total = total.Add(m.equityTax()).Add(m.fundTax())
	}
	return Money(total)
}

// MonthlyTax returns the per-month breakdown behind EstimateTax, oldest month first.
func MonthlyTax(sells []model.Transaction) []model.MonthlyTax {
	buckets := monthlyBuckets(sells)
	months := make([]model.MonthlyTax, 0, len(buckets))
	for _, b := range buckets {
		equityTax := b.equityTax()
		fundTax := b.fundTax()
		months = append(months, model.MonthlyTax{
			Month:        b.month,
			EquitySold:   Money(b.equitySold),
			EquityGain:   Money(b.equityGain),
			EquityExempt: !b.equityTaxable(),
			EquityTax:    Money(equityTax),
			FundGain:     Money(b.fundGain),
			FundTax:      Money(fundTax),
			EstimatedTax: Money(equityTax.Add(fundTax)),
			SellCount:    b.sells,
		})
	}
	return months
}

// SaleGain is net proceeds minus the cost basis linked to the sale.
func SaleGain(t model.Transaction) decimal.Decimal {
	return saleProceeds(t).Sub(t.Quantity.Mul(t.CostBasisAtSale))
}

type taxMonth struct {
	month      string
	equitySold decimal.Decimal
	equityGain decimal.Decimal
	fundGain   decimal.Decimal
	sells      int
}

func (m taxMonth) equityTaxable() bool {
	return m.equitySold.GreaterThanOrEqual(EquityExemptionThreshold)
}

func (m taxMonth) equityTax() decimal.Decimal {
	if !m.equityTaxable() {
		return decimal.Zero
	}
	return m.equityGain.Mul(EquityTaxRate)
}

func (m taxMonth) fundTax() decimal.Decimal {
	return m.fundGain.Mul(FundTaxRate)
}

func monthlyBuckets(txs []model.Transaction) []taxMonth {
	byMonth := make(map[string]*taxMonth)
	for _, t := range txs {
		if t.Kind != model.KindSell {
			continue
		}
		key := t.TransactedAt.UTC().Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &taxMonth{month: key}
			byMonth[key] = m
		}
		m.sells++

		gain := SaleGain(t)
		switch t.InstrumentClass.TaxRule() {
		case model.TaxRuleEquity:
			m.equitySold = m.equitySold.Add(saleGross(t))
			if gain.IsPositive() {
				m.equityGain = m.equityGain.Add(gain)
			}
		case model.TaxRuleFund:
			if gain.IsPositive() {
				m.fundGain = m.fundGain.Add(gain)
			}
		case model.TaxRuleExempt:
		}
	}

	months := make([]taxMonth, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month < months[j].month })
	return months
}

func saleGross(t model.Transaction) decimal.Decimal {
	if !t.GrossValue.IsZero() {
		return t.GrossValue
	}
	return Money(t.Quantity.Mul(t.UnitPrice))
}

// saleProceeds is the net value, derived here when the sale was never finalized.
// A finalized sale whose fee and tax eat the whole gross has zero proceeds.
func saleProceeds(t model.Transaction) decimal.Decimal {
	if !t.GrossValue.IsZero() {
		return t.NetValue
	}
	return saleGross(t).Sub(t.Fee).Sub(t.Tax)
}
