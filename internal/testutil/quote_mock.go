package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/yahoo"
)

// StubQuoteSource is an in-memory quotes.Source for testing.
// Unknown codes return apperrors.ErrQuoteNotFound. It is safe for concurrent use.
type StubQuoteSource struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	errors map[string]error
	calls  int
}

// NewStubQuoteSource creates an empty stub.
func NewStubQuoteSource() *StubQuoteSource {
	return &StubQuoteSource{
		prices: map[string]decimal.Decimal{},
		errors: map[string]error{},
	}
}

// WithPrice makes the stub quote code at price.
func (s *StubQuoteSource) WithPrice(code, price string) *StubQuoteSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[strings.ToUpper(code)] = decimal.RequireFromString(price)
	return s
}

// WithError makes lookups of code fail with err.
func (s *StubQuoteSource) WithError(code string, err error) *StubQuoteSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[strings.ToUpper(code)] = err
	return s
}

// Calls returns how many lookups were made.
func (s *StubQuoteSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Quote implements quotes.Source.
func (s *StubQuoteSource) Quote(_ context.Context, code string) (quotes.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	code = strings.ToUpper(code)
	if err, ok := s.errors[code]; ok {
		return quotes.Quote{}, err
	}
	price, ok := s.prices[code]
	if !ok {
		return quotes.Quote{}, fmt.Errorf("%w: %s", apperrors.ErrQuoteNotFound, code)
	}
	return quotes.Quote{Code: code, Price: price, UpdatedAt: time.Now().UTC()}, nil
}

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined quotes instead of making actual API calls.
type MockYahooClient struct {
	// MockQuotes maps a full symbol (suffix included) to its quote
	MockQuotes map[string]yahoo.Quote
	// MockError is the error to return from every lookup
	MockError error
	// Symbols records every requested symbol
	Symbols []string
}

// NewMockYahooClient creates a mock with no known symbols.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{MockQuotes: map[string]yahoo.Quote{}}
}

// LatestQuote returns the configured quote or MockError.
func (m *MockYahooClient) LatestQuote(_ context.Context, symbol string) (yahoo.Quote, error) {
	m.Symbols = append(m.Symbols, symbol)
	if m.MockError != nil {
		return yahoo.Quote{}, m.MockError
	}
	q, ok := m.MockQuotes[symbol]
	if !ok {
		return yahoo.Quote{}, fmt.Errorf("no data for %s", symbol)
	}
	return q, nil
}

// WithQuote configures the mock to return price for symbol.
func (m *MockYahooClient) WithQuote(symbol, name, price string) *MockYahooClient {
	m.MockQuotes[symbol] = yahoo.Quote{
		Symbol:   symbol,
		Name:     name,
		Currency: "BRL",
		Price:    decimal.RequireFromString(price),
		At:       time.Now().UTC(),
	}
	return m
}

// WithError configures the mock to return the specified error.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.MockError = err
	return m
}

// RecordingPublisher captures published events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []stream.Event
}

// Publish records event.
func (p *RecordingPublisher) Publish(event stream.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []stream.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]stream.Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the type of every published event in order.
func (p *RecordingPublisher) Types() []string {
	events := p.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
