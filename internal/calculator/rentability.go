package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

var (
	ceilingFactor = decimal.RequireFromString("1.10")
	supportFactor = decimal.RequireFromString("0.90")
	daysPerYear   = decimal.NewFromInt(365)
)

// InstrumentRentability values one position against its transaction history.
//
// The price used is marketPrice when given, then the position's stored market
// price, then its average cost. history should hold the transactions of this
// position only; order does not matter.
func InstrumentRentability(pos model.Position, history []model.Transaction, marketPrice *decimal.Decimal, now time.Time) model.RentabilityReport {
	r := model.RentabilityReport{
		PortfolioID:     pos.PortfolioID,
		InstrumentCode:  pos.InstrumentCode,
		InstrumentName:  pos.InstrumentName,
		InstrumentClass: pos.InstrumentClass,
		Quantity:        pos.Quantity,
		AverageCost:     pos.AverageCost,
		ComputedAt:      now,
	}

	var sells []model.Transaction
	realized := decimal.Zero
	for _, t := range history {
		switch {
		case t.Kind == model.KindBuy:
			r.TotalBought = r.TotalBought.Add(t.GrossValue)
			if r.FirstBuyAt == nil || t.TransactedAt.Before(*r.FirstBuyAt) {
				at := t.TransactedAt
				r.FirstBuyAt = &at
			}
		case t.Kind == model.KindSell:
			r.TotalSold = r.TotalSold.Add(t.GrossValue)
			sells = append(sells, t)
			realized = realized.Add(saleProceeds(t).Sub(t.Quantity.Mul(pos.AverageCost)))
		case t.Kind.IsIncome():
			r.TotalIncome = r.TotalIncome.Add(t.GrossValue)
		}
		r.TotalFees = r.TotalFees.Add(t.Fee)
		r.TotalTax = r.TotalTax.Add(t.Tax)
		if r.LastTransactionAt == nil || t.TransactedAt.After(*r.LastTransactionAt) {
			at := t.TransactedAt
			r.LastTransactionAt = &at
		}
	}
	if estimated := EstimateTax(sells); estimated.GreaterThan(r.TotalTax) {
		r.TotalTax = estimated
	}

	price := pos.EffectivePrice()
	if marketPrice != nil {
		price = *marketPrice
	}
	r.MarketPrice = price

	r.InvestedCapital = r.TotalBought.Sub(r.TotalSold)
	if pos.Quantity.IsPositive() {
		r.MarketValue = Money(pos.Quantity.Mul(price))
	}
	r.ValueWithIncome = r.MarketValue.Add(r.TotalIncome)
	r.GrossReturn = r.MarketValue.Sub(r.InvestedCapital)
	r.TotalCosts = r.TotalFees.Add(r.TotalTax)
	r.NetReturn = r.ValueWithIncome.Sub(r.InvestedCapital).Sub(r.TotalCosts)
	r.RealizedGain = Money(realized)

	r.GrossReturnPct = Percent(r.GrossReturn, r.InvestedCapital)
	r.NetReturnPct = Percent(r.NetReturn, r.InvestedCapital)
	r.PriceChangePct = Percent(price.Sub(pos.AverageCost), pos.AverageCost)
	r.DividendYield = Percent(r.TotalIncome, r.MarketValue)
	r.AnnualizedReturnPct = annualize(r.NetReturnPct, r.FirstBuyAt, now)

	r.PriceChangeValue = Money(price.Sub(pos.AverageCost).Mul(pos.Quantity))
	r.PriceCeiling = Money(price.Mul(ceilingFactor))
	r.PriceSupport = Money(price.Mul(supportFactor))

	r.TotalBought = Money(r.TotalBought)
	r.TotalSold = Money(r.TotalSold)
	r.TotalIncome = Money(r.TotalIncome)
	r.TotalFees = Money(r.TotalFees)
	r.TotalTax = Money(r.TotalTax)
	r.InvestedCapital = Money(r.InvestedCapital)
	r.ValueWithIncome = Money(r.ValueWithIncome)
	r.GrossReturn = Money(r.GrossReturn)
	r.TotalCosts = Money(r.TotalCosts)
	r.NetReturn = Money(r.NetReturn)
	return r
}

// annualize is a linear approximation: pct * 365 / days held.
func annualize(pct decimal.Decimal, firstBuy *time.Time, now time.Time) decimal.Decimal {
	if firstBuy == nil {
		return decimal.Zero
	}
	days := int64(now.Sub(*firstBuy).Hours() / 24)
	if days <= 0 {
		return decimal.Zero
	}
	return pct.Mul(daysPerYear).DivRound(decimal.NewFromInt(days), PercentPlaces)
}
