package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
)

// Publisher receives ledger and valuation events. *stream.Hub satisfies it.
type Publisher interface {
	Publish(event stream.Event)
}

type discardPublisher struct{}

func (discardPublisher) Publish(stream.Event) {}

func publisherOrDiscard(p Publisher) Publisher {
	if p == nil {
		return discardPublisher{}
	}
	return p
}

// PortfolioLocks serializes writers per portfolio. Different portfolios
// proceed concurrently. The zero value is ready to use.
type PortfolioLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPortfolioLocks creates an empty lock set.
func NewPortfolioLocks() *PortfolioLocks {
	return &PortfolioLocks{}
}

// Lock blocks until the caller is the only writer of portfolioID and returns the unlock function.
func (l *PortfolioLocks) Lock(portfolioID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[portfolioID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[portfolioID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// repositories bundles the repositories a unit of work needs so they can be
// moved onto one *sql.Tx together.
type repositories struct {
	portfolios   *repository.PortfolioRepository
	positions    *repository.PositionRepository
	transactions *repository.TransactionRepository
}

func (r repositories) withTx(tx *sql.Tx) repositories {
	return repositories{
		portfolios:   r.portfolios.WithTx(tx),
		positions:    r.positions.WithTx(tx),
		transactions: r.transactions.WithTx(tx),
	}
}

// inTx runs fn inside a database transaction and commits when it returns nil.
// The database holds a single connection, so fn must only use repos scoped to tx.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// revalue recomputes a portfolio's market value from its positions and stores it.
// Every ledger mutation and every price refresh ends with a call to revalue
// inside the same database transaction.
func revalue(ctx context.Context, repos repositories, portfolioID string, now time.Time) (model.Portfolio, error) {
	p, err := repos.portfolios.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	positions, err := repos.positions.GetPositionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	p.MarketValue = marketValue(positions)
	p.RevaluedAt = &now
	if err := repos.portfolios.UpdateMarketValue(ctx, &p); err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

func marketValue(positions []model.Position) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}
