package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPositionNotFound indicates that a position with the given ID does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrUnknownInstrument indicates that a reversal or valuation was requested
	// for an instrument the portfolio has never held.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrQuoteNotFound indicates that no price source knows the instrument code.
	ErrQuoteNotFound = errors.New("quote not found")
)

// Business logic errors represent rejected ledger operations.
// The ledger leaves the position untouched when it returns one of these.
var (
	// ErrInvalidTransaction indicates a non-positive quantity or price,
	// an unknown kind, or a transaction that does not belong to the position.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInsufficientPosition indicates that an exit would make the quantity negative.
	ErrInsufficientPosition = errors.New("insufficient position")

	// ErrInvalidDateRange indicates that the start of a range is after its end.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Operation failure errors are reported to API clients as the message of a 500 response.
var (
	ErrFailedToRetrievePortfolios   = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrievePortfolio    = errors.New("failed to retrieve portfolio")
	ErrFailedToCreatePortfolio      = errors.New("failed to create portfolio")
	ErrFailedToUpdatePortfolio      = errors.New("failed to update portfolio")
	ErrFailedToDeletePortfolio      = errors.New("failed to delete portfolio")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToApplyTransaction     = errors.New("failed to apply transaction")
	ErrFailedToUpdateTransaction    = errors.New("failed to update transaction")
	ErrFailedToDeleteTransaction    = errors.New("failed to delete transaction")
	ErrFailedToSetPrice             = errors.New("failed to set price")
	ErrFailedToComputeRentability   = errors.New("failed to compute rentability")
	ErrFailedToEstimateTax          = errors.New("failed to estimate tax")
	ErrFailedToRefreshPrices        = errors.New("failed to refresh prices")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies in stored data.
var (
	// ErrDataInconsistency indicates that stored data contradicts itself
	// (e.g. a transaction whose position row is missing).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
