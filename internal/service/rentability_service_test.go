package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
)

// TestRentabilityService_InstrumentRentability tests single-instrument reports.
//
// WHY: The report is computed from stored history and the stored quote; income
// must add to the value without touching the position.
func TestRentabilityService_InstrumentRentability(t *testing.T) {
	ctx := context.Background()

	t.Run("income adds to value with income", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Income")
		drafts := []model.TransactionDraft{
			testutil.NewDraft(model.KindBuy, "TAEE11", "100", "25").WithFee("0").Build(),
			testutil.NewDraft(model.KindDividend, "TAEE11", "100", "1.50").WithFee("0").At(testutil.Epoch.AddDate(0, 1, 0)).Build(),
		}
		for _, d := range drafts {
			if _, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID, d); err != nil {
				t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
			}
		}

		// Execute
		report, err := svcs.Rentability.InstrumentRentability(ctx, p.ID, "taee11")

		// Assert
		if err != nil {
			t.Fatalf("InstrumentRentability() returned unexpected error: %v", err)
		}
		if !report.Quantity.Equal(testutil.D("100")) || !report.AverageCost.Equal(testutil.D("25")) {
			t.Errorf("Expected 100 @ 25, got %s @ %s", report.Quantity, report.AverageCost)
		}
		if !report.TotalIncome.Equal(testutil.D("150")) {
			t.Errorf("Expected total income 150.00, got %s", report.TotalIncome)
		}
		if !report.ValueWithIncome.Equal(report.MarketValue.Add(testutil.D("150"))) {
			t.Errorf("Expected value with income %s + 150, got %s", report.MarketValue, report.ValueWithIncome)
		}
	})

	t.Run("income only has zero percentages", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Coupons")
		if _, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID,
			testutil.NewDraft(model.KindIncome, "XPML11", "10", "1").WithFee("0").Build()); err != nil {
			t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
		}

		// Execute
		report, err := svcs.Rentability.InstrumentRentability(ctx, p.ID, "XPML11")

		// Assert
		if err != nil {
			t.Fatalf("InstrumentRentability() returned unexpected error: %v", err)
		}
		if !report.GrossReturnPct.IsZero() || !report.NetReturnPct.IsZero() {
			t.Errorf("Expected zero percentages, got %s and %s", report.GrossReturnPct, report.NetReturnPct)
		}
	})

	t.Run("unknown instrument", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRentabilityService(t, db)
		p := testutil.CreatePortfolio(t, db, "Empty")

		// Execute
		_, err := svc.InstrumentRentability(ctx, p.ID, "PETR4")

		// Assert
		if !errors.Is(err, apperrors.ErrUnknownInstrument) {
			t.Errorf("Expected ErrUnknownInstrument, got %v", err)
		}
	})
}

// TestRentabilityService_PortfolioRentability tests the portfolio aggregate.
//
// WHY: Closed positions still carry realized gains and income, so they must be
// part of the aggregate even though they have no market value.
func TestRentabilityService_PortfolioRentability(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates open and closed positions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Aggregate")
		drafts := []model.TransactionDraft{
			testutil.NewDraft(model.KindBuy, "PETR4", "100", "20").WithFee("0").Build(),
			testutil.NewDraft(model.KindBuy, "VALE3", "10", "60").WithFee("0").Build(),
			testutil.NewDraft(model.KindSell, "VALE3", "10", "70").WithFee("0").At(testutil.Epoch.AddDate(0, 0, 1)).Build(),
		}
		for _, d := range drafts {
			if _, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID, d); err != nil {
				t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
			}
		}

		// Execute
		report, err := svcs.Rentability.PortfolioRentability(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("PortfolioRentability() returned unexpected error: %v", err)
		}
		if len(report.Instruments) != 2 {
			t.Fatalf("Expected 2 instruments, got %d", len(report.Instruments))
		}
		if !report.TotalBought.Equal(testutil.D("2600")) {
			t.Errorf("Expected total bought 2600, got %s", report.TotalBought)
		}
		if !report.MarketValue.Equal(testutil.D("2000")) {
			t.Errorf("Expected market value 2000, got %s", report.MarketValue)
		}
		if report.PortfolioName != "Aggregate" {
			t.Errorf("Expected portfolio name Aggregate, got %s", report.PortfolioName)
		}
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRentabilityService(t, db)

		// Execute
		_, err := svc.PortfolioRentability(ctx, testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestRentabilityService_EstimateTax tests the monthly capital-gains estimate.
//
// WHY: The estimate reads cost basis stamped on stored sells, so it depends on
// the ledger having recorded it at apply time.
func TestRentabilityService_EstimateTax(t *testing.T) {
	ctx := context.Background()

	t.Run("taxes equity gains above the exemption", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Taxable")
		drafts := []model.TransactionDraft{
			testutil.NewDraft(model.KindBuy, "PETR4", "1000", "20").WithFee("0").Build(),
			testutil.NewDraft(model.KindSell, "PETR4", "1000", "25").WithFee("0").At(testutil.Epoch.AddDate(0, 0, 1)).Build(),
		}
		for _, d := range drafts {
			if _, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID, d); err != nil {
				t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
			}
		}

		// Execute
		estimate, err := svcs.Rentability.EstimateTax(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("EstimateTax() returned unexpected error: %v", err)
		}
		// 25000 sold, 5000 gain, 15%
		if !estimate.Total.Equal(testutil.D("750")) {
			t.Errorf("Expected total 750.00, got %s", estimate.Total)
		}
		if len(estimate.Months) != 1 || estimate.Months[0].Month != "2024-03" {
			t.Fatalf("Expected one month 2024-03, got %+v", estimate.Months)
		}
		if estimate.Months[0].EquityExempt {
			t.Error("Expected month not to be exempt")
		}
	})

	t.Run("no sells", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRentabilityService(t, db)
		p := testutil.CreatePortfolio(t, db, "Holder")

		// Execute
		estimate, err := svc.EstimateTax(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("EstimateTax() returned unexpected error: %v", err)
		}
		if !estimate.Total.IsZero() || estimate.Months == nil || len(estimate.Months) != 0 {
			t.Errorf("Expected zero estimate with empty months, got %+v", estimate)
		}
	})
}

// TestRentabilityService_RealReturn tests the inflation-adjusted return.
//
// WHY: The range starts at the portfolio's creation; asking for a date before it
// is a caller error, not a zero return.
func TestRentabilityService_RealReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("compares growth with inflation", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRentabilityService(t, db)
		p := testutil.NewPortfolio().
			WithInitialCapital("10000").
			WithMarketValue("11000").
			CreatedAt(time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)).
			Build(t, db)

		// Execute
		rr, err := svc.RealReturn(ctx, p.ID, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

		// Assert
		if err != nil {
			t.Fatalf("RealReturn() returned unexpected error: %v", err)
		}
		if !rr.NominalReturn.Equal(testutil.D("0.1")) {
			t.Errorf("Expected nominal return 0.1, got %s", rr.NominalReturn)
		}
		if !rr.AccumulatedInflation.IsPositive() {
			t.Errorf("Expected positive inflation, got %s", rr.AccumulatedInflation)
		}
		if !rr.RealReturn.LessThan(rr.NominalReturn) {
			t.Errorf("Expected real return %s below nominal %s", rr.RealReturn, rr.NominalReturn)
		}
		if !rr.InflationAdjusted.GreaterThan(rr.InitialCapital) {
			t.Errorf("Expected adjusted capital above %s, got %s", rr.InitialCapital, rr.InflationAdjusted)
		}
	})

	t.Run("rejects a date before creation", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRentabilityService(t, db)
		p := testutil.CreatePortfolio(t, db, "Young")

		// Execute
		_, err := svc.RealReturn(ctx, p.ID, testutil.Epoch.AddDate(-1, 0, 0))

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})
}
