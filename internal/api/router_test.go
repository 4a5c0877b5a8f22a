package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	services := testutil.NewTestServices(t, db)
	cfg := &config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}
	return api.NewRouter(api.Services{
		System:      services.System,
		Portfolio:   services.Portfolio,
		Transaction: services.Transaction,
		Quote:       services.Quote,
		Rentability: services.Rentability,
	}, nil, cfg)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRouter_PortfolioLifecycle tests the routes end to end.
//
// WHY: Handlers are unit tested on their own; this checks that the router
// wires path parameters and middleware to the right handler.
func TestRouter_PortfolioLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Setup
	w := do(t, router, http.MethodPost, "/api/portfolio", `{"name": "Main", "initialCapital": 5000}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var portfolio model.Portfolio
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&portfolio)
	base := "/api/portfolio/" + portfolio.ID

	// Execute
	w = do(t, router, http.MethodPost, base+"/transactions",
		`{"kind": "buy", "instrumentCode": "PETR4", "quantity": 100, "unitPrice": 25, "fee": 0, "date": "2024-03-04"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPut, base+"/positions/PETR4/price", `{"price": 30}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Assert
	w = do(t, router, http.MethodGet, base, "")
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&portfolio)
	if !portfolio.MarketValue.Equal(testutil.D("3000")) {
		t.Errorf("Expected market value 3000, got %s", portfolio.MarketValue)
	}

	w = do(t, router, http.MethodGet, base+"/rentability/PETR4", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, base+"/transactions?kind=buy", "")
	var transactions []model.Transaction
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&transactions)
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}

	w = do(t, router, http.MethodDelete, "/api/transaction/"+transactions[0].ID, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodDelete, base, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_Middleware(t *testing.T) {
	router := newTestRouter(t)

	t.Run("rejects malformed portfolio IDs", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/portfolio/not-a-uuid", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects malformed transaction IDs", func(t *testing.T) {
		w := do(t, router, http.MethodDelete, "/api/transaction/42", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("answers CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/portfolio", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Expected allow-origin header, got %q", got)
		}
	})

	t.Run("exposes metrics", func(t *testing.T) {
		do(t, router, http.MethodGet, "/api/system/health", "")

		w := do(t, router, http.MethodGet, "/metrics", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "portfolio_http_requests_total") {
			t.Error("Expected portfolio_http_requests_total in metrics output")
		}
	})

	t.Run("fee preview", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/fee?gross=1000", "")
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}
