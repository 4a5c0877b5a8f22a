package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
)

// PortfolioService handles portfolio-related business logic operations.
// It owns portfolio metadata and the cached market value derived from positions.
type PortfolioService struct {
	db     *sql.DB
	repos  repositories
	locks  *PortfolioLocks
	events Publisher
	now    func() time.Time
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependencies.
func NewPortfolioService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	locks *PortfolioLocks,
	events Publisher,
) *PortfolioService {
	return &PortfolioService{
		db: db,
		repos: repositories{
			portfolios:   portfolioRepo,
			positions:    positionRepo,
			transactions: transactionRepo,
		},
		locks:  locks,
		events: publisherOrDiscard(events),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetAllPortfolios retrieves all portfolios ordered by name.
func (s *PortfolioService) GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	return s.repos.portfolios.GetPortfolios(ctx)
}

// GetPortfolio retrieves a single portfolio by ID.
func (s *PortfolioService) GetPortfolio(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	return s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID)
}

// CreatePortfolio creates an empty portfolio. It starts revalued at zero.
func (s *PortfolioService) CreatePortfolio(ctx context.Context, draft model.PortfolioDraft) (model.Portfolio, error) {
	now := s.now()
	p := model.Portfolio{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(draft.Name),
		Description:    draft.Description,
		Objective:      draft.Objective,
		RiskProfile:    draft.RiskProfile,
		InitialCapital: draft.InitialCapital.Round(2),
		MarketValue:    decimal.Zero,
		RevaluedAt:     &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repos.portfolios.InsertPortfolio(ctx, &p); err != nil {
		return model.Portfolio{}, err
	}

	slog.InfoContext(ctx, "portfolio created", "portfolio_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdatePortfolio replaces the user-editable fields of a portfolio.
func (s *PortfolioService) UpdatePortfolio(ctx context.Context, portfolioID string, draft model.PortfolioDraft) (model.Portfolio, error) {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	p, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}

	p.Name = strings.TrimSpace(draft.Name)
	p.Description = draft.Description
	p.Objective = draft.Objective
	p.RiskProfile = draft.RiskProfile
	p.InitialCapital = draft.InitialCapital.Round(2)
	p.UpdatedAt = s.now()

	if err := s.repos.portfolios.UpdatePortfolio(ctx, &p); err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// DeletePortfolio removes a portfolio together with its positions and transactions.
func (s *PortfolioService) DeletePortfolio(ctx context.Context, portfolioID string) error {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	if err := s.repos.portfolios.DeletePortfolio(ctx, portfolioID); err != nil {
		return err
	}

	metrics.PortfolioMarketValue.DeleteLabelValues(portfolioID)
	slog.InfoContext(ctx, "portfolio deleted", "portfolio_id", portfolioID)
	return nil
}

// ListPositions returns the positions of a portfolio, closed ones included.
func (s *PortfolioService) ListPositions(ctx context.Context, portfolioID string) ([]model.Position, error) {
	if _, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.repos.positions.GetPositionsByPortfolio(ctx, portfolioID)
}

// Revalue recomputes and stores the market value of a portfolio from its
// positions' stored prices.
func (s *PortfolioService) Revalue(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	var p model.Portfolio
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		p, err = revalue(ctx, s.repos.withTx(tx), portfolioID, s.now())
		return err
	})
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("revalue portfolio: %w", err)
	}

	recordRevaluation(p, s.events)
	return p, nil
}

// StalePortfolios returns portfolios not revalued within olderThan.
func (s *PortfolioService) StalePortfolios(ctx context.Context, olderThan time.Duration) ([]model.Portfolio, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("%w: staleness window must be positive", apperrors.ErrInvalidDateRange)
	}
	return s.repos.portfolios.GetStalePortfolios(ctx, s.now().Add(-olderThan))
}

func recordRevaluation(p model.Portfolio, events Publisher) {
	value, _ := p.MarketValue.Float64()
	metrics.PortfolioMarketValue.WithLabelValues(p.ID).Set(value)
	events.Publish(stream.Event{
		Type:        stream.EventPortfolioRevalued,
		PortfolioID: p.ID,
		MarketValue: p.MarketValue.StringFixed(2),
	})
}
