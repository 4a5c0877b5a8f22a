package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
)

// TestQuoteService_RefreshPortfolio tests refreshing market prices of a portfolio.
//
// WHY: A refresh talks to an external price source that can fail per instrument.
// Prices that were fetched must be stored and valued even when others fail, and
// closed positions must not be quoted at all.
func TestQuoteService_RefreshPortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("stores fetched prices and reports failures", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Quotes")
		testutil.NewPosition(p.ID, "PETR4").Holding("100", "25").Build(t, db)
		testutil.NewPosition(p.ID, "VALE3").Holding("10", "60").Build(t, db)
		testutil.NewPosition(p.ID, "OIBR3").Build(t, db)
		svcs.QuoteSource.WithPrice("PETR4", "30.004").WithPrice("OIBR3", "1")

		// Execute
		resp, err := svcs.Quote.RefreshPortfolio(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}
		if resp.TotalUpdated != 1 || resp.Updated[0].InstrumentCode != "PETR4" {
			t.Fatalf("Expected PETR4 to be updated, got %+v", resp.Updated)
		}
		if !resp.Updated[0].Price.Equal(testutil.D("30")) {
			t.Errorf("Expected price rounded to 30.00, got %s", resp.Updated[0].Price)
		}
		if resp.Updated[0].PreviousPrice != nil {
			t.Errorf("Expected no previous price, got %s", resp.Updated[0].PreviousPrice)
		}
		if resp.TotalErrors != 1 || resp.Errors[0].InstrumentCode != "VALE3" {
			t.Errorf("Expected VALE3 to fail, got %+v", resp.Errors)
		}
		if !resp.Success {
			t.Error("Expected partial refresh to succeed")
		}
		// 100*30 + 10*60 at average cost
		if !resp.MarketValue.Equal(testutil.D("3600")) {
			t.Errorf("Expected market value 3600, got %s", resp.MarketValue)
		}
		if svcs.QuoteSource.Calls() != 2 {
			t.Errorf("Expected 2 quote lookups, got %d", svcs.QuoteSource.Calls())
		}

		stored, err := svcs.Portfolio.GetPortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if !stored.MarketValue.Equal(testutil.D("3600")) {
			t.Errorf("Expected stored market value 3600, got %s", stored.MarketValue)
		}

		types := svcs.Events.Types()
		if len(types) != 2 || types[0] != stream.EventPriceUpdated || types[1] != stream.EventPortfolioRevalued {
			t.Errorf("Expected price and revaluation events, got %v", types)
		}
	})

	t.Run("all lookups failing is not a success", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Offline")
		testutil.NewPosition(p.ID, "ITSA4").Holding("10", "9").Build(t, db)
		svcs.QuoteSource.WithError("ITSA4", errors.New("connection refused"))

		// Execute
		resp, err := svcs.Quote.RefreshPortfolio(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}
		if resp.Success {
			t.Error("Expected refresh to report failure")
		}
		if resp.Errors[0].Error != "connection refused" {
			t.Errorf("Expected lookup error to be reported, got %q", resp.Errors[0].Error)
		}
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestQuoteService(t, db, testutil.NewStubQuoteSource())

		// Execute
		_, err := svc.RefreshPortfolio(ctx, testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("refreshed price values later transactions", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Follow-up")
		if _, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID,
			testutil.NewDraft(model.KindBuy, "BBDC4", "100", "14").Build()); err != nil {
			t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
		}
		svcs.QuoteSource.WithPrice("BBDC4", "15")
		if _, err := svcs.Quote.RefreshPortfolio(ctx, p.ID); err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}

		// Execute
		_, _, err := svcs.Transaction.ApplyTransaction(ctx, p.ID,
			testutil.NewDraft(model.KindBuy, "BBDC4", "100", "16").At(testutil.Epoch.AddDate(0, 0, 1)).Build())

		// Assert
		if err != nil {
			t.Fatalf("ApplyTransaction() returned unexpected error: %v", err)
		}
		stored, err := svcs.Portfolio.GetPortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if !stored.MarketValue.Equal(testutil.D("3000")) {
			t.Errorf("Expected 200 units at 15.00, got %s", stored.MarketValue)
		}
	})
}

// TestQuoteService_SetPrice tests manually overriding a market price.
//
// WHY: Manual prices are the fallback for instruments no source quotes, so they
// must validate input and revalue like a refresh does.
func TestQuoteService_SetPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("stores price and revalues", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svcs := testutil.NewTestServices(t, db)
		p := testutil.CreatePortfolio(t, db, "Manual")
		testutil.NewPosition(p.ID, "CDB2030").WithClass(model.ClassFixedIncome).Holding("5", "1000").Build(t, db)

		// Execute
		pos, err := svcs.Quote.SetPrice(ctx, p.ID, "cdb2030", testutil.D("1012.345"))

		// Assert
		if err != nil {
			t.Fatalf("SetPrice() returned unexpected error: %v", err)
		}
		if pos.MarketPrice == nil || !pos.MarketPrice.Equal(testutil.D("1012.35")) {
			t.Errorf("Expected price 1012.35, got %v", pos.MarketPrice)
		}
		stored, err := svcs.Portfolio.GetPortfolio(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if !stored.MarketValue.Equal(testutil.D("5061.75")) {
			t.Errorf("Expected market value 5061.75, got %s", stored.MarketValue)
		}
	})

	t.Run("override drops the cached quote", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		source := testutil.NewStubQuoteSource().WithPrice("PETR4", "30")
		svc := testutil.NewTestQuoteService(t, db, quotes.NewMemoryCache(source, time.Hour))
		p := testutil.CreatePortfolio(t, db, "Cached")
		testutil.NewPosition(p.ID, "PETR4").Holding("10", "25").Build(t, db)
		if _, err := svc.RefreshPortfolio(ctx, p.ID); err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}

		// Execute
		if _, err := svc.SetPrice(ctx, p.ID, "PETR4", testutil.D("31")); err != nil {
			t.Fatalf("SetPrice() returned unexpected error: %v", err)
		}
		if _, err := svc.RefreshPortfolio(ctx, p.ID); err != nil {
			t.Fatalf("RefreshPortfolio() returned unexpected error: %v", err)
		}

		// Assert
		if source.Calls() != 2 {
			t.Errorf("Expected the second refresh to reach the source, got %d lookups", source.Calls())
		}
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestQuoteService(t, db, testutil.NewStubQuoteSource())
		p := testutil.CreatePortfolio(t, db, "Manual")

		// Execute
		_, err := svc.SetPrice(ctx, p.ID, "PETR4", testutil.D("0"))

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidTransaction) {
			t.Errorf("Expected ErrInvalidTransaction, got %v", err)
		}
	})

	t.Run("unknown instrument", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestQuoteService(t, db, testutil.NewStubQuoteSource())
		p := testutil.CreatePortfolio(t, db, "Manual")

		// Execute
		_, err := svc.SetPrice(ctx, p.ID, "PETR4", testutil.D("10"))

		// Assert
		if !errors.Is(err, apperrors.ErrUnknownInstrument) {
			t.Errorf("Expected ErrUnknownInstrument, got %v", err)
		}
	})
}
