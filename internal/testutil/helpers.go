package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
)

// Services bundles every service over one database, sharing a single lock table
// the way the server wires them.
type Services struct {
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Quote       *service.QuoteService
	Rentability *service.RentabilityService
	System      *service.SystemService
	Locks       *service.PortfolioLocks
	QuoteSource *StubQuoteSource
	Events      *RecordingPublisher
}

// NewTestServices wires every service in replay mode with a stub quote source
// and a recording publisher.
func NewTestServices(t *testing.T, db *sql.DB) *Services {
	t.Helper()
	return NewTestServicesWithMode(t, db, ledger.ReverseModeReplay)
}

// NewTestServicesWithMode is NewTestServices with an explicit reversal mode.
func NewTestServicesWithMode(t *testing.T, db *sql.DB, mode ledger.ReverseMode) *Services {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	locks := service.NewPortfolioLocks()
	source := NewStubQuoteSource()
	events := &RecordingPublisher{}

	return &Services{
		Portfolio:   service.NewPortfolioService(db, portfolioRepo, positionRepo, transactionRepo, locks, events),
		Transaction: service.NewTransactionService(db, portfolioRepo, positionRepo, transactionRepo, mode, locks, events),
		Quote:       service.NewQuoteService(db, portfolioRepo, positionRepo, transactionRepo, source, locks, events),
		Rentability: service.NewRentabilityService(portfolioRepo, positionRepo, transactionRepo, calculator.DefaultInflationTable()),
		System:      service.NewSystemService(db, nil),
		Locks:       locks,
		QuoteSource: source,
		Events:      events,
	}
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		service.NewPortfolioLocks(),
		nil,
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()
	return NewTestTransactionServiceWithMode(t, db, ledger.ReverseModeReplay)
}

func NewTestTransactionServiceWithMode(t *testing.T, db *sql.DB, mode ledger.ReverseMode) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		mode,
		service.NewPortfolioLocks(),
		nil,
	)
}

// NewTestQuoteService creates a QuoteService reading prices from source.
func NewTestQuoteService(t *testing.T, db *sql.DB, source quotes.Source) *service.QuoteService {
	t.Helper()

	return service.NewQuoteService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		source,
		service.NewPortfolioLocks(),
		nil,
	)
}

func NewTestRentabilityService(t *testing.T, db *sql.DB) *service.RentabilityService {
	t.Helper()

	return service.NewRentabilityService(
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		calculator.DefaultInflationTable(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, map[string]bool{"quotes": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeInstrumentCode generates a ticker-like instrument code for testing.
//
// Example usage:
//
//	code := testutil.MakeInstrumentCode("PETR")
//	// Returns: "PETRX1Y2"
func MakeInstrumentCode(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("MyPortfolio")
//	// Returns: "MyPortfolio ABC123"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
