package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
)

// TestPositionRepository tests storing and loading positions.
//
// WHY: Lots are kept as a JSON column and the market price is nullable; both
// must survive a round trip exactly, since the average cost is rebuilt from lots.
func TestPositionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips lots and missing price", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		p := testutil.CreatePortfolio(t, db, "Lots")
		created := testutil.NewPosition(p.ID, "petr4").Holding("100.1234", "25.50").Build(t, db)

		// Execute
		got, err := repo.GetPositionByInstrument(ctx, p.ID, "PETR4")

		// Assert
		if err != nil {
			t.Fatalf("GetPositionByInstrument() returned unexpected error: %v", err)
		}
		if got.ID != created.ID {
			t.Errorf("Expected ID %s, got %s", created.ID, got.ID)
		}
		if got.MarketPrice != nil {
			t.Errorf("Expected no market price, got %s", got.MarketPrice)
		}
		if len(got.Lots) != 1 || !got.Lots[0].Quantity.Equal(testutil.D("100.1234")) {
			t.Errorf("Expected one lot of 100.1234, got %+v", got.Lots)
		}
		if !got.AverageCost.Equal(testutil.D("25.5")) {
			t.Errorf("Expected average cost 25.5, got %s", got.AverageCost)
		}
	})

	t.Run("update market price", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		p := testutil.CreatePortfolio(t, db, "Prices")
		created := testutil.NewPosition(p.ID, "VALE3").Holding("10", "60").Build(t, db)

		// Execute
		err := repo.UpdateMarketPrice(ctx, created.ID, testutil.D("61.25"), time.Now().UTC())

		// Assert
		if err != nil {
			t.Fatalf("UpdateMarketPrice() returned unexpected error: %v", err)
		}
		got, err := repo.GetPositionOnID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetPositionOnID() returned unexpected error: %v", err)
		}
		if got.MarketPrice == nil || !got.MarketPrice.Equal(testutil.D("61.25")) {
			t.Errorf("Expected market price 61.25, got %v", got.MarketPrice)
		}
	})

	t.Run("missing position", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)

		// Execute
		err := repo.UpdateMarketPrice(ctx, testutil.MakeID(), testutil.D("1"), time.Now().UTC())
		_, getErr := repo.GetPositionOnID(ctx, testutil.MakeID())

		// Assert
		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound from update, got %v", err)
		}
		if !errors.Is(getErr, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound from get, got %v", getErr)
		}
	})

	t.Run("one position per instrument", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		p := testutil.CreatePortfolio(t, db, "Unique")
		testutil.NewPosition(p.ID, "ITUB4").Build(t, db)
		dup := model.Position{
			ID:              testutil.MakeID(),
			PortfolioID:     p.ID,
			InstrumentCode:  "ITUB4",
			InstrumentClass: model.ClassEquity,
			OpenedAt:        testutil.Epoch,
			UpdatedAt:       testutil.Epoch,
		}

		// Execute
		err := repo.UpsertPosition(ctx, &dup)

		// Assert
		if err == nil {
			t.Error("Expected unique constraint violation")
		}
	})
}

// TestTransactionRepository tests transaction queries.
//
// WHY: The ledger replays position history in the order this repository returns
// it; ties on the transaction time must fall back to creation order.
func TestTransactionRepository(t *testing.T) {
	ctx := context.Background()

	// Setup
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.CreatePortfolio(t, db, "Order")
	pos := testutil.NewPosition(p.ID, "WEGE3").Build(t, db)

	insert := func(kind model.TransactionKind, created time.Time) model.Transaction {
		tx := model.Transaction{
			ID:              testutil.MakeID(),
			PortfolioID:     p.ID,
			PositionID:      pos.ID,
			Kind:            kind,
			InstrumentCode:  pos.InstrumentCode,
			InstrumentClass: pos.InstrumentClass,
			Quantity:        testutil.D("1"),
			UnitPrice:       testutil.D("40"),
			TransactedAt:    testutil.Epoch,
			CreatedAt:       created,
		}.Finalize()
		if err := repo.InsertTransaction(ctx, &tx); err != nil {
			t.Fatalf("InsertTransaction() returned unexpected error: %v", err)
		}
		return tx
	}
	second := insert(model.KindSell, testutil.Epoch.Add(2*time.Second))
	first := insert(model.KindBuy, testutil.Epoch.Add(time.Second))

	t.Run("history breaks ties by creation", func(t *testing.T) {
		// Execute
		history, err := repo.GetTransactionsByPosition(ctx, pos.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetTransactionsByPosition() returned unexpected error: %v", err)
		}
		if len(history) != 2 || history[0].ID != first.ID || history[1].ID != second.ID {
			t.Errorf("Expected buy then sell, got %+v", history)
		}
	})

	t.Run("sells only", func(t *testing.T) {
		// Execute
		sells, err := repo.GetSellsByPortfolio(ctx, p.ID)

		// Assert
		if err != nil {
			t.Fatalf("GetSellsByPortfolio() returned unexpected error: %v", err)
		}
		if len(sells) != 1 || sells[0].ID != second.ID {
			t.Errorf("Expected the sell only, got %+v", sells)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		// Setup
		first.CostBasisAtSale = testutil.D("39.5")
		first.Note = "restamped"

		// Execute
		if err := repo.UpdateTransaction(ctx, &first); err != nil {
			t.Fatalf("UpdateTransaction() returned unexpected error: %v", err)
		}
		got, err := repo.GetTransaction(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetTransaction() returned unexpected error: %v", err)
		}
		delErr := repo.DeleteTransaction(ctx, testutil.MakeID())

		// Assert
		if got.Note != "restamped" || !got.CostBasisAtSale.Equal(testutil.D("39.5")) {
			t.Errorf("Expected updated transaction, got %+v", got)
		}
		if !errors.Is(delErr, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got %v", delErr)
		}
	})
}
