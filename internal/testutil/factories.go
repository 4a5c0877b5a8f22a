package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
)

// Epoch is the default transaction date of builders: a fixed Monday in 2024.
var Epoch = time.Date(2024, time.March, 4, 13, 0, 0, 0, time.UTC)

// D parses a decimal literal, failing loudly on typos in test data.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithInitialCapital("10000").
//	    Build(t, db)
type PortfolioBuilder struct {
	portfolio model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{portfolio: model.Portfolio{
		ID:             MakeID(),
		Name:           MakePortfolioName("Test Portfolio"),
		Description:    "Test description",
		Objective:      "growth",
		RiskProfile:    "moderate",
		InitialCapital: decimal.Zero,
		MarketValue:    decimal.Zero,
		CreatedAt:      Epoch,
		UpdatedAt:      Epoch,
	}}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.portfolio.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.portfolio.Name = name
	return b
}

// WithInitialCapital sets the capital the portfolio started with.
func (b *PortfolioBuilder) WithInitialCapital(amount string) *PortfolioBuilder {
	b.portfolio.InitialCapital = D(amount)
	return b
}

// WithMarketValue sets the stored market value.
func (b *PortfolioBuilder) WithMarketValue(amount string) *PortfolioBuilder {
	b.portfolio.MarketValue = D(amount)
	return b
}

// CreatedAt sets the creation time.
func (b *PortfolioBuilder) CreatedAt(at time.Time) *PortfolioBuilder {
	b.portfolio.CreatedAt = at
	b.portfolio.UpdatedAt = at
	return b
}

// RevaluedAt sets the last revaluation time.
func (b *PortfolioBuilder) RevaluedAt(at time.Time) *PortfolioBuilder {
	b.portfolio.RevaluedAt = &at
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	p := b.portfolio
	if err := repository.NewPortfolioRepository(db).InsertPortfolio(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}
	return p
}

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// CreatePortfolios creates multiple portfolios with unique names.
func CreatePortfolios(t *testing.T, db *sql.DB, count int) []model.Portfolio {
	t.Helper()

	portfolios := make([]model.Portfolio, count)
	for i := range count {
		portfolios[i] = NewPortfolio().Build(t, db)
	}
	return portfolios
}

// PositionBuilder creates positions directly, bypassing the ledger.
// Use it for read-side tests; write-side tests should go through TransactionService.
type PositionBuilder struct {
	position model.Position
}

// NewPosition creates a PositionBuilder for code in portfolioID.
func NewPosition(portfolioID, code string) *PositionBuilder {
	return &PositionBuilder{position: model.Position{
		ID:              MakeID(),
		PortfolioID:     portfolioID,
		InstrumentCode:  ledger.NormalizeCode(code),
		InstrumentClass: model.ClassEquity,
		Quantity:        decimal.Zero,
		AverageCost:     decimal.Zero,
		Lots:            []model.Lot{},
		OpenedAt:        Epoch,
		UpdatedAt:       Epoch,
	}}
}

// WithClass sets the instrument class.
func (b *PositionBuilder) WithClass(class model.InstrumentClass) *PositionBuilder {
	b.position.InstrumentClass = class
	return b
}

// Holding sets quantity and average cost, recorded as a single lot.
func (b *PositionBuilder) Holding(qty, cost string) *PositionBuilder {
	b.position.Quantity = D(qty)
	b.position.AverageCost = D(cost)
	b.position.Lots = []model.Lot{{TransactionID: MakeID(), Quantity: D(qty), UnitPrice: D(cost)}}
	return b
}

// WithMarketPrice sets the stored quote.
func (b *PositionBuilder) WithMarketPrice(price string) *PositionBuilder {
	p := D(price)
	b.position.MarketPrice = &p
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	p := b.position
	if err := repository.NewPositionRepository(db).UpsertPosition(context.Background(), &p); err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}
	return p
}

// DraftBuilder builds transaction drafts for TransactionService tests.
//
// Example usage:
//
//	draft := testutil.NewDraft(model.KindBuy, "PETR4", "100", "25.50").WithFee("0").Build()
type DraftBuilder struct {
	draft model.TransactionDraft
}

// NewDraft creates a draft of an equity transaction dated Epoch.
func NewDraft(kind model.TransactionKind, code, qty, price string) *DraftBuilder {
	return &DraftBuilder{draft: model.TransactionDraft{
		Kind:            kind,
		InstrumentCode:  code,
		InstrumentClass: model.ClassEquity,
		Quantity:        D(qty),
		UnitPrice:       D(price),
		TransactedAt:    Epoch,
	}}
}

// WithFee sets an explicit fee; without it the fee schedule applies.
func (b *DraftBuilder) WithFee(fee string) *DraftBuilder {
	f := D(fee)
	b.draft.Fee = &f
	return b
}

// WithTax sets the tax withheld.
func (b *DraftBuilder) WithTax(tax string) *DraftBuilder {
	x := D(tax)
	b.draft.Tax = &x
	return b
}

// WithClass sets the instrument class.
func (b *DraftBuilder) WithClass(class model.InstrumentClass) *DraftBuilder {
	b.draft.InstrumentClass = class
	return b
}

// At sets the transaction time.
func (b *DraftBuilder) At(at time.Time) *DraftBuilder {
	b.draft.TransactedAt = at
	return b
}

// Build returns the draft.
func (b *DraftBuilder) Build() model.TransactionDraft {
	return b.draft
}
