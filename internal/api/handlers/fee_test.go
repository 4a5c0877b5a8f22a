package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/testutil"
)

func TestFee(t *testing.T) {
	tests := []struct {
		name     string
		gross    string
		wantCode int
		wantFee  string
		wantNet  string
	}{
		{"proportional fee", "1000", http.StatusOK, "0.33", "999.67"},
		{"minimum fee", "10", http.StatusOK, "0.01", "9.99"},
		{"zero gross", "0", http.StatusOK, "0", "0"},
		{"not a number", "abc", http.StatusBadRequest, "", ""},
		{"missing", "", http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/fee?gross="+tt.gross, nil)
			w := httptest.NewRecorder()

			Fee(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("Expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var response FeeResponse
			//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
			json.NewDecoder(w.Body).Decode(&response)
			if !response.Fee.Equal(testutil.D(tt.wantFee)) {
				t.Errorf("Expected fee %s, got %s", tt.wantFee, response.Fee)
			}
			if !response.Net.Equal(testutil.D(tt.wantNet)) {
				t.Errorf("Expected net %s, got %s", tt.wantNet, response.Net)
			}
		})
	}
}

func TestAffordable(t *testing.T) {
	t.Run("order fits the cash", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fee/affordable?cash=1000&price=25", nil)
		w := httptest.NewRecorder()

		Affordable(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var response AffordableResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)
		if response.Gross.Add(response.Fee).GreaterThan(testutil.D("1000")) {
			t.Errorf("Expected gross + fee within 1000, got %s + %s", response.Gross, response.Fee)
		}
		if !response.Quantity.IsPositive() {
			t.Errorf("Expected a positive quantity, got %s", response.Quantity)
		}
	})

	t.Run("missing price", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fee/affordable?cash=1000", nil)
		w := httptest.NewRecorder()

		Affordable(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
