// Package scheduler periodically refreshes market prices of stale portfolios.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// maxConcurrentPortfolios bounds portfolios refreshed at once.
const maxConcurrentPortfolios = 2

// PortfolioLister finds the portfolios due for a refresh.
type PortfolioLister interface {
	GetAllPortfolios(ctx context.Context) ([]model.Portfolio, error)
	StalePortfolios(ctx context.Context, olderThan time.Duration) ([]model.Portfolio, error)
}

// Refresher refreshes the prices of one portfolio.
type Refresher interface {
	RefreshPortfolio(ctx context.Context, portfolioID string) (model.PriceRefreshResponse, error)
}

// Summary reports the outcome of one scheduled run.
type Summary struct {
	Portfolios int
	Updated    int
	Errors     int
	Failed     []string // portfolio IDs whose refresh returned an error
}

// Scheduler runs price refreshes on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	staleAfter time.Duration
	portfolios PortfolioLister
	quotes     Refresher

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Scheduler. The schedule is validated here so a typo fails at startup.
func New(cfg config.SchedulerConfig, portfolios PortfolioLister, quotes Refresher) (*Scheduler, error) {
	if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshSchedule, err)
	}
	if cfg.StaleAfter <= 0 {
		return nil, fmt.Errorf("stale window must be positive, got %s", cfg.StaleAfter)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		spec:       cfg.RefreshSchedule,
		staleAfter: cfg.StaleAfter,
		portfolios: portfolios,
		quotes:     quotes,
	}, nil
}

// Start registers the refresh job and starts the cron loop. Jobs run with a
// context derived from ctx and are cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	jobCtx := s.ctx
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RefreshStale(jobCtx); err != nil {
			slog.ErrorContext(jobCtx, "scheduled refresh failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	s.cron.Start()
	slog.InfoContext(ctx, "price refresh scheduled", "schedule", s.spec, "stale_after", s.staleAfter.String())
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

// RefreshStale refreshes every portfolio not revalued within the stale window.
func (s *Scheduler) RefreshStale(ctx context.Context) (Summary, error) {
	stale, err := s.portfolios.StalePortfolios(ctx, s.staleAfter)
	if err != nil {
		return Summary{}, err
	}
	return s.refresh(ctx, stale), nil
}

// RefreshAll refreshes every portfolio regardless of when it was last revalued.
func (s *Scheduler) RefreshAll(ctx context.Context) (Summary, error) {
	all, err := s.portfolios.GetAllPortfolios(ctx)
	if err != nil {
		return Summary{}, err
	}
	return s.refresh(ctx, all), nil
}

func (s *Scheduler) refresh(ctx context.Context, portfolios []model.Portfolio) Summary {
	start := time.Now()
	summary := Summary{Portfolios: len(portfolios)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPortfolios)
	for _, p := range portfolios {
		g.Go(func() error {
			resp, err := s.quotes.RefreshPortfolio(gctx, p.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.WarnContext(gctx, "portfolio refresh failed", "portfolio_id", p.ID, "error", err)
				summary.Failed = append(summary.Failed, p.ID)
				return nil
			}
			summary.Updated += resp.TotalUpdated
			summary.Errors += resp.TotalErrors
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "scheduled refresh finished",
		"portfolios", summary.Portfolios,
		"updated", summary.Updated,
		"errors", summary.Errors,
		"failed", len(summary.Failed),
		"duration", time.Since(start).String(),
	)
	return summary
}
