package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
)

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *stream.Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestHub_Publish tests event fan-out to subscribed clients.
//
// WHY: clients that subscribe to one portfolio must not receive the events of
// another, while unfiltered clients see everything.
func TestHub_Publish(t *testing.T) {
	// Setup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := stream.NewHub(nil)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	all := dial(t, server, "")
	filtered := dial(t, server, "?portfolio=p-1")
	waitForClients(t, hub, 2)

	// Execute
	hub.Publish(stream.Event{Type: stream.EventPortfolioRevalued, PortfolioID: "p-2", MarketValue: "10.00"})
	hub.Publish(stream.Event{Type: stream.EventPortfolioRevalued, PortfolioID: "p-1", MarketValue: "20.00"})

	// Assert
	var got stream.Event
	_ = all.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := all.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() returned unexpected error: %v", err)
	}
	if got.PortfolioID != "p-2" {
		t.Errorf("Expected first event for p-2, got %s", got.PortfolioID)
	}

	_ = filtered.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := filtered.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() returned unexpected error: %v", err)
	}
	if got.PortfolioID != "p-1" || got.MarketValue != "20.00" {
		t.Errorf("Expected only the p-1 event, got %+v", got)
	}
	if got.At.IsZero() {
		t.Error("Expected Publish to stamp the event time")
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := stream.NewHub([]string{"http://localhost:3000"})
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer server.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Error("Expected handshake to fail for a foreign origin")
	}
}
