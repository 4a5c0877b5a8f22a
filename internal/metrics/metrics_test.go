package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
)

// TestMiddleware tests request counting by route pattern.
//
// WHY: labelling by raw path would create one series per portfolio UUID.
func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/portfolio/{uuid}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/portfolio/{uuid}", "418"))

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/portfolio/"+id, nil))
	}

	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/portfolio/{uuid}", "418"))
	if after-before != 3 {
		t.Errorf("Expected 3 requests on the route pattern, got %v", after-before)
	}
}

func TestHandler(t *testing.T) {
	metrics.TransactionsTotal.WithLabelValues("buy", "apply").Inc()

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "portfolio_transactions_total") {
		t.Error("Expected transactions counter in exposition output")
	}
}
