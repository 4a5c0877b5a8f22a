package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
)

// maxConcurrentQuotes bounds quote lookups in flight per refresh.
const maxConcurrentQuotes = 4

// QuoteService writes market prices into positions and revalues their portfolios.
type QuoteService struct {
	db     *sql.DB
	repos  repositories
	source quotes.Source
	locks  *PortfolioLocks
	events Publisher
	now    func() time.Time
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	source quotes.Source,
	locks *PortfolioLocks,
	events Publisher,
) *QuoteService {
	return &QuoteService{
		db: db,
		repos: repositories{
			portfolios:   portfolioRepo,
			positions:    positionRepo,
			transactions: transactionRepo,
		},
		source: source,
		locks:  locks,
		events: publisherOrDiscard(events),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RefreshPortfolio fetches a quote for every open position, stores the prices
// that could be fetched and revalues the portfolio.
//
// Quotes are fetched before the database transaction starts. A failed lookup
// leaves that position's previous price in place and is reported in Errors.
func (s *QuoteService) RefreshPortfolio(ctx context.Context, portfolioID string) (model.PriceRefreshResponse, error) {
	start := time.Now()
	defer func() { metrics.RefreshDuration.Observe(time.Since(start).Seconds()) }()

	positions, err := s.repos.positions.GetPositionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.PriceRefreshResponse{}, err
	}
	if _, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return model.PriceRefreshResponse{}, err
	}

	resp := model.PriceRefreshResponse{
		PortfolioID: portfolioID,
		Updated:     []model.UpdatedPosition{},
		Errors:      []model.UpdatedPositionErr{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQuotes)
	for _, pos := range positions {
		if !pos.IsOpen() {
			continue
		}
		g.Go(func() error {
			q, err := s.source.Quote(gctx, pos.InstrumentCode)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.QuoteRefreshes.WithLabelValues("error").Inc()
				resp.Errors = append(resp.Errors, model.UpdatedPositionErr{
					PositionID:     pos.ID,
					InstrumentCode: pos.InstrumentCode,
					Error:          err.Error(),
				})
				// One unknown instrument must not abort the others.
				return nil
			}
			metrics.QuoteRefreshes.WithLabelValues("ok").Inc()
			resp.Updated = append(resp.Updated, model.UpdatedPosition{
				PositionID:     pos.ID,
				InstrumentCode: pos.InstrumentCode,
				PreviousPrice:  pos.MarketPrice,
				Price:          q.Price.Round(2),
				QuotedAt:       q.UpdatedAt,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PriceRefreshResponse{}, err
	}
	if ctx.Err() != nil {
		return model.PriceRefreshResponse{}, ctx.Err()
	}
	slices.SortFunc(resp.Updated, func(a, b model.UpdatedPosition) int {
		return strings.Compare(a.InstrumentCode, b.InstrumentCode)
	})
	slices.SortFunc(resp.Errors, func(a, b model.UpdatedPositionErr) int {
		return strings.Compare(a.InstrumentCode, b.InstrumentCode)
	})

	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	now := s.now()
	var p model.Portfolio
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := s.repos.withTx(tx)
		for _, u := range resp.Updated {
			if !u.Price.IsPositive() {
				continue
			}
			if err := repos.positions.UpdateMarketPrice(ctx, u.PositionID, u.Price, now); err != nil {
				return err
			}
		}
		var err error
		p, err = revalue(ctx, repos, portfolioID, now)
		return err
	})
	if err != nil {
		return model.PriceRefreshResponse{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshPrices, err)
	}

	resp.TotalUpdated = len(resp.Updated)
	resp.TotalErrors = len(resp.Errors)
	resp.Success = resp.TotalUpdated > 0 || resp.TotalErrors == 0
	resp.MarketValue = p.MarketValue
	resp.RevaluedAt = now

	slog.InfoContext(ctx, "portfolio prices refreshed",
		"portfolio_id", portfolioID,
		"updated", resp.TotalUpdated,
		"errors", resp.TotalErrors,
		"market_value", p.MarketValue.String(),
	)
	for _, u := range resp.Updated {
		s.events.Publish(stream.Event{
			Type:           stream.EventPriceUpdated,
			PortfolioID:    portfolioID,
			InstrumentCode: u.InstrumentCode,
			Price:          u.Price.StringFixed(2),
		})
	}
	recordRevaluation(p, s.events)

	return resp, nil
}

// SetPrice overrides the market price of one position and revalues the portfolio.
// Returns ErrUnknownInstrument if the portfolio never held code.
func (s *QuoteService) SetPrice(ctx context.Context, portfolioID, code string, price decimal.Decimal) (model.Position, error) {
	if !price.IsPositive() {
		return model.Position{}, fmt.Errorf("%w: price must be positive", apperrors.ErrInvalidTransaction)
	}
	code = ledger.NormalizeCode(code)

	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	now := s.now()
	var pos model.Position
	var p model.Portfolio
	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := s.repos.withTx(tx)
		if _, err := repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
			return err
		}

		var err error
		pos, err = repos.positions.GetPositionByInstrument(ctx, portfolioID, code)
		if errors.Is(err, apperrors.ErrPositionNotFound) {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownInstrument, code)
		}
		if err != nil {
			return err
		}

		rounded := price.Round(2)
		pos.MarketPrice = &rounded
		pos.UpdatedAt = now
		if err := repos.positions.UpdateMarketPrice(ctx, pos.ID, rounded, now); err != nil {
			return err
		}

		p, err = revalue(ctx, repos, portfolioID, now)
		return err
	})
	if err != nil {
		return model.Position{}, fmt.Errorf("set price: %w", err)
	}

	// A cached quote would undo the override on the next refresh.
	if cache, ok := s.source.(quotes.Invalidator); ok {
		cache.Invalidate(ctx, code)
	}

	slog.InfoContext(ctx, "market price set", "portfolio_id", portfolioID, "instrument", code, "price", pos.MarketPrice.String())
	s.events.Publish(stream.Event{
		Type:           stream.EventPriceUpdated,
		PortfolioID:    portfolioID,
		InstrumentCode: code,
		Price:          pos.MarketPrice.StringFixed(2),
	})
	recordRevaluation(p, s.events)

	return pos, nil
}
