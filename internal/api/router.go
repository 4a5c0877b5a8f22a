package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
)

// Services groups the services the router dispatches to.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Quote       *service.QuoteService
	Rentability *service.RentabilityService
}

// NewRouter creates and configures the HTTP router. stream serves the
// WebSocket event feed at /api/ws; it may be nil.
func NewRouter(svc Services, stream http.Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		if stream != nil {
			r.Handle("/ws", stream)
		}

		r.Route("/fee", func(r chi.Router) {
			r.Get("/", handlers.Fee)
			r.Get("/affordable", handlers.Affordable)
		})

		portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio)
		transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
		rentabilityHandler := handlers.NewRentabilityHandler(svc.Rentability)
		quoteHandler := handlers.NewQuoteHandler(svc.Quote)

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Put("/", portfolioHandler.UpdatePortfolio)
				r.Delete("/", portfolioHandler.DeletePortfolio)
				r.Post("/revalue", portfolioHandler.Revalue)

				r.Get("/positions", portfolioHandler.Positions)
				r.Put("/positions/{code}/price", quoteHandler.SetPrice)
				r.Post("/refresh-prices", quoteHandler.RefreshPrices)

				r.Get("/rentability", rentabilityHandler.PortfolioRentability)
				r.Get("/rentability/{code}", rentabilityHandler.InstrumentRentability)
				r.Get("/tax", rentabilityHandler.Tax)
				r.Get("/real-return", rentabilityHandler.RealReturn)

				r.Get("/transactions", transactionHandler.PortfolioTransactions)
				r.Post("/transactions", transactionHandler.CreateTransaction)
				r.Post("/transactions/{transactionId}/reverse", transactionHandler.ReverseTransaction)
			})
		})

		r.Route("/transaction/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", transactionHandler.GetTransaction)
			r.Put("/", transactionHandler.UpdateTransaction)
			r.Delete("/", transactionHandler.DeleteTransaction)
		})
	})

	return r
}
