package calculator

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// PortfolioRentability sums per-instrument reports into portfolio totals.
// Percentages are recomputed from the summed amounts, not averaged.
func PortfolioRentability(p model.Portfolio, reports []model.RentabilityReport, now time.Time) model.PortfolioRentabilityReport {
	agg := model.PortfolioRentabilityReport{
		PortfolioID:       p.ID,
		PortfolioName:     p.Name,
		InitialCapital:    p.InitialCapital,
		ClassDistribution: make(map[model.InstrumentClass]decimal.Decimal),
		InstrumentCount:   len(reports),
		Instruments:       reports,
		RevaluedAt:        p.RevaluedAt,
		ComputedAt:        now,
	}
	if agg.Instruments == nil {
		agg.Instruments = []model.RentabilityReport{}
	}

	byClass := make(map[model.InstrumentClass]decimal.Decimal)
	for _, r := range reports {
		agg.TotalBought = agg.TotalBought.Add(r.TotalBought)
		agg.TotalSold = agg.TotalSold.Add(r.TotalSold)
		agg.TotalIncome = agg.TotalIncome.Add(r.TotalIncome)
		agg.TotalFees = agg.TotalFees.Add(r.TotalFees)
		agg.TotalTax = agg.TotalTax.Add(r.TotalTax)
		agg.InvestedCapital = agg.InvestedCapital.Add(r.InvestedCapital)
		agg.MarketValue = agg.MarketValue.Add(r.MarketValue)
		agg.ValueWithIncome = agg.ValueWithIncome.Add(r.ValueWithIncome)
		agg.GrossReturn = agg.GrossReturn.Add(r.GrossReturn)
		agg.TotalCosts = agg.TotalCosts.Add(r.TotalCosts)
		agg.NetReturn = agg.NetReturn.Add(r.NetReturn)
		agg.RealizedGain = agg.RealizedGain.Add(r.RealizedGain)

		byClass[r.InstrumentClass] = byClass[r.InstrumentClass].Add(r.MarketValue)

		switch r.NetReturn.Sign() {
		case 1:
			agg.PositiveCount++
		case -1:
			agg.NegativeCount++
		}
	}

	for class, value := range byClass {
		agg.ClassDistribution[class] = Percent(value, agg.MarketValue)
	}

	agg.GrossReturnPct = Percent(agg.GrossReturn, agg.InvestedCapital)
	agg.NetReturnPct = Percent(agg.NetReturn, agg.InvestedCapital)
	agg.DividendYield = Percent(agg.TotalIncome, agg.MarketValue)
	agg.Volatility = Volatility(reports)
	agg.PeriodReturns = PeriodReturnsOf(agg.NetReturnPct)
	return agg
}

// Volatility is the sample standard deviation of each instrument's price change
// percentage. Fewer than two instruments yield zero.
func Volatility(reports []model.RentabilityReport) decimal.Decimal {
	n := len(reports)
	if n < 2 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range reports {
		total = total.Add(r.PriceChangePct)
	}
	mean := total.DivRound(decimal.NewFromInt(int64(n)), PercentPlaces)

	squares := decimal.Zero
	for _, r := range reports {
		d := r.PriceChangePct.Sub(mean)
		squares = squares.Add(d.Mul(d))
	}
	variance := squares.DivRound(decimal.NewFromInt(int64(n-1)), PercentPlaces)

	// decimal has no square root.
	f, _ := variance.Float64()
	return decimal.NewFromFloat(math.Sqrt(f)).Round(PercentPlaces)
}

// PeriodReturnsOf spreads a total return percentage over fixed periods.
// This is a flat split, not a time series.
func PeriodReturnsOf(netPct decimal.Decimal) model.PeriodReturns {
	return model.PeriodReturns{
		Month:      netPct.DivRound(decimal.NewFromInt(12), PercentPlaces),
		Quarter:    netPct.DivRound(decimal.NewFromInt(4), PercentPlaces),
		HalfYear:   netPct.DivRound(decimal.NewFromInt(2), PercentPlaces),
		Year:       netPct,
		YearToDate: netPct,
	}
}
