// Package stream pushes ledger and valuation events to WebSocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
)

// Event types.
const (
	EventTransactionApplied  = "transaction.applied"
	EventTransactionUpdated  = "transaction.updated"
	EventTransactionReversed = "transaction.reversed"
	EventPortfolioRevalued   = "portfolio.revalued"
	EventPriceUpdated        = "price.updated"
)

// Event is a JSON message sent to WebSocket clients.
type Event struct {
	Type           string    `json:"type"`
	PortfolioID    string    `json:"portfolioId"`
	TransactionID  string    `json:"transactionId,omitempty"`
	InstrumentCode string    `json:"instrumentCode,omitempty"`
	Price          string    `json:"price,omitempty"`
	MarketValue    string    `json:"marketValue,omitempty"`
	At             time.Time `json:"at"`
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// Hub manages WebSocket connections and fans events out to every client.
// A client may subscribe to a single portfolio with ?portfolio=<uuid>.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]string
	broadcast  chan Event
	register   chan subscription
	unregister chan *websocket.Conn
	done       chan struct{}
	upgrader   websocket.Upgrader
}

type subscription struct {
	conn        *websocket.Conn
	portfolioID string
}

// NewHub creates a hub accepting upgrades from the given origins. An empty list allows any origin.
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan Event, 256),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Run is the hub's event loop. It returns, closing every client, when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			metrics.WebSocketClients.Set(0)
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub.conn] = sub.portfolioID
			total := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(total))
			slog.Debug("ws client connected", "total", total, "portfolio_id", sub.portfolioID)

		case conn := <-h.unregister:
			h.drop(conn)

		case event := <-h.broadcast:
			h.send(event)
		}
	}
}

// Publish queues an event for delivery. Events are dropped when the queue is full
// so that ledger writes never block on slow clients.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		slog.Warn("ws broadcast queue full, dropping event", "type", event.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) send(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode ws event", "type", event.Type, "error", err)
		return
	}

	var failed []*websocket.Conn
	h.mu.RLock()
	for conn, portfolioID := range h.clients {
		if portfolioID != "" && portfolioID != event.PortfolioID {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(total))
}

// HandleWS handles WebSocket upgrade requests at GET /api/ws.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}

	select {
	case h.register <- subscription{conn: conn, portfolioID: r.URL.Query().Get("portfolio")}:
	case <-h.done:
		conn.Close()
		return
	}

	// Read pump: keep connection alive and detect disconnects.
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for range ticker.C {
			h.mu.RLock()
			_, ok := h.clients[conn]
			h.mu.RUnlock()
			if !ok {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}()
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
