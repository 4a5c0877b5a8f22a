// Package metrics provides Prometheus instrumentation for the rentability service.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransactionsTotal counts ledger mutations by kind and operation (apply, update, delete).
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_transactions_total",
		Help: "Total number of ledger mutations",
	}, []string{"kind", "operation"})

	// TransactionRejections counts mutations refused by the ledger.
	TransactionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_transaction_rejections_total",
		Help: "Ledger mutations rejected, by reason",
	}, []string{"reason"})

	// QuoteRefreshes counts quote lookups by outcome.
	QuoteRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_quote_refreshes_total",
		Help: "Quote lookups performed during price refresh",
	}, []string{"result"})

	// RefreshDuration tracks how long revaluing one portfolio takes.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_refresh_duration_seconds",
		Help:    "Duration of a portfolio price refresh",
		Buckets: prometheus.DefBuckets,
	})

	// PortfolioMarketValue is the last revalued market value of each portfolio.
	PortfolioMarketValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "portfolio_market_value",
		Help: "Market value of a portfolio at its last revaluation",
	}, []string{"portfolio_id"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
// Requests are labelled with the chi route pattern, not the raw path, so UUIDs
// do not explode the label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack hands the connection to the WebSocket upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}
