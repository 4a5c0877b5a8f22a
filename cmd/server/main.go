package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/logger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/version"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection; migrations run on open
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("connected to database", "path", cfg.Database.Path)

	source, closeQuotes, err := quotes.FromConfig(cfg.Quotes)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeQuotes(); err != nil {
			slog.Warn("failed to close quote cache", "error", err)
		}
	}()

	hub := stream.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run(ctx)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Create services. Every writer shares one lock table.
	locks := service.NewPortfolioLocks()
	services := api.Services{
		System: service.NewSystemService(db, map[string]bool{
			"quotes":    true,
			"scheduler": cfg.Scheduler.Enabled,
			"redis":     cfg.Quotes.RedisURL != "",
		}),
		Portfolio:   service.NewPortfolioService(db, portfolioRepo, positionRepo, transactionRepo, locks, hub),
		Transaction: service.NewTransactionService(db, portfolioRepo, positionRepo, transactionRepo, cfg.Ledger.ReverseMode, locks, hub),
		Quote:       service.NewQuoteService(db, portfolioRepo, positionRepo, transactionRepo, source, locks, hub),
		Rentability: service.NewRentabilityService(portfolioRepo, positionRepo, transactionRepo, calculator.DefaultInflationTable()),
	}

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler, services.Portfolio, services.Quote)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		slog.Info("price refresh scheduled", "schedule", cfg.Scheduler.RefreshSchedule, "stale_after", cfg.Scheduler.StaleAfter)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(services, http.HandlerFunc(hub.HandleWS), cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.Server.Addr, "version", version.Version, "reverse_mode", cfg.Ledger.ReverseMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal or a listener failure
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exited")
	return nil
}
