package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// It handles recording ledger entries and querying them per position or portfolio.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `id, portfolio_id, position_id, kind, instrument_code, instrument_class,
	quantity, unit_price, gross_value, fee, tax, net_value, cost_basis_at_sale,
	transacted_at, settled_at, note, created_at`

// GetTransaction retrieves a single transaction by ID.
func (r *TransactionRepository) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ?`

	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, query, transactionID))
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return t, err
}

// GetTransactionsByPosition returns the history of a position in the order it was applied.
// Ties on transacted_at fall back to creation order.
func (r *TransactionRepository) GetTransactionsByPosition(ctx context.Context, positionID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction"
		WHERE position_id = ?
		ORDER BY transacted_at ASC, created_at ASC`

	return r.query(ctx, query, positionID)
}

// GetTransactions lists the transactions of a portfolio narrowed by filter,
// newest first.
func (r *TransactionRepository) GetTransactions(ctx context.Context, portfolioID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	conditions := []string{"portfolio_id = ?"}
	args := []any{portfolioID}

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.InstrumentCode != "" {
		conditions = append(conditions, "instrument_code = ?")
		args = append(args, filter.InstrumentCode)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "transacted_at >= ?")
		args = append(args, FormatTime(filter.From))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "transacted_at <= ?")
		args = append(args, FormatTime(filter.To))
	}

	query := `SELECT ` + transactionColumns + ` FROM "transaction"
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY transacted_at DESC, created_at DESC`

	return r.query(ctx, query, args...)
}

// GetSellsByPortfolio returns every sell of a portfolio in chronological order.
func (r *TransactionRepository) GetSellsByPortfolio(ctx context.Context, portfolioID string) ([]model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction"
		WHERE portfolio_id = ? AND kind = ?
		ORDER BY transacted_at ASC, created_at ASC`

	return r.query(ctx, query, portfolioID, model.KindSell)
}

// InsertTransaction records a new transaction.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	query := `INSERT INTO "transaction" (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.PositionID,
		t.Kind,
		t.InstrumentCode,
		t.InstrumentClass,
		t.Quantity,
		t.UnitPrice,
		t.GrossValue,
		t.Fee,
		t.Tax,
		t.NetValue,
		t.CostBasisAtSale,
		FormatTime(t.TransactedAt),
		formatNullTime(t.SettledAt),
		t.Note,
		FormatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// UpdateTransaction overwrites every mutable column of a transaction.
func (r *TransactionRepository) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	query := `
		UPDATE "transaction"
		SET position_id = ?, kind = ?, instrument_code = ?, instrument_class = ?,
			quantity = ?, unit_price = ?, gross_value = ?, fee = ?, tax = ?, net_value = ?,
			cost_basis_at_sale = ?, transacted_at = ?, settled_at = ?, note = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.PositionID,
		t.Kind,
		t.InstrumentCode,
		t.InstrumentClass,
		t.Quantity,
		t.UnitPrice,
		t.GrossValue,
		t.Fee,
		t.Tax,
		t.NetValue,
		t.CostBasisAtSale,
		FormatTime(t.TransactedAt),
		formatNullTime(t.SettledAt),
		t.Note,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return expectAffected(result, apperrors.ErrTransactionNotFound)
}

// DeleteTransaction removes a transaction.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "transaction" WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return expectAffected(result, apperrors.ErrTransactionNotFound)
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var settledAt sql.NullString
	var transactedAt, createdAt string

	err := row.Scan(
		&t.ID,
		&t.PortfolioID,
		&t.PositionID,
		&t.Kind,
		&t.InstrumentCode,
		&t.InstrumentClass,
		&t.Quantity,
		&t.UnitPrice,
		&t.GrossValue,
		&t.Fee,
		&t.Tax,
		&t.NetValue,
		&t.CostBasisAtSale,
		&transactedAt,
		&settledAt,
		&t.Note,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if t.TransactedAt, err = ParseTime(transactedAt); err != nil {
		return model.Transaction{}, err
	}
	if t.SettledAt, err = parseNullTime(settledAt); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}
