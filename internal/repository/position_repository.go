package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
// Lots are stored as a JSON array next to the aggregate columns.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a new PositionRepository scoped to the provided transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const positionColumns = `id, portfolio_id, instrument_code, instrument_name, instrument_class, quantity, average_cost, market_price, lots, opened_at, updated_at`

// GetPositionOnID retrieves a position by its ID.
func (r *PositionRepository) GetPositionOnID(ctx context.Context, positionID string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE id = ?`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, positionID))
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	return p, err
}

// GetPositionByInstrument retrieves the position a portfolio holds in one instrument.
// Returns apperrors.ErrPositionNotFound when the portfolio never traded it.
func (r *PositionRepository) GetPositionByInstrument(ctx context.Context, portfolioID, instrumentCode string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE portfolio_id = ? AND instrument_code = ?`

	p, err := scanPosition(r.getQuerier().QueryRowContext(ctx, query, portfolioID, instrumentCode))
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	return p, err
}

// GetPositionsByPortfolio returns every position of a portfolio, closed ones included,
// ordered by instrument code.
func (r *PositionRepository) GetPositionsByPortfolio(ctx context.Context, portfolioID string) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE portfolio_id = ? ORDER BY instrument_code`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// UpsertPosition inserts a position or replaces the ledger state of an existing one.
func (r *PositionRepository) UpsertPosition(ctx context.Context, p *model.Position) error {
	lots, err := encodeLots(p.Lots)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO position (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			instrument_name = excluded.instrument_name,
			instrument_class = excluded.instrument_class,
			quantity = excluded.quantity,
			average_cost = excluded.average_cost,
			market_price = excluded.market_price,
			lots = excluded.lots,
			opened_at = excluded.opened_at,
			updated_at = excluded.updated_at
	`

	_, err = r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.PortfolioID,
		p.InstrumentCode,
		p.InstrumentName,
		p.InstrumentClass,
		p.Quantity,
		p.AverageCost,
		nullDecimal(p.MarketPrice),
		lots,
		FormatTime(p.OpenedAt),
		FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}

// UpdateMarketPrice stores a new quote for a position without touching its ledger state.
func (r *PositionRepository) UpdateMarketPrice(ctx context.Context, positionID string, price decimal.Decimal, at time.Time) error {
	query := `UPDATE position SET market_price = ?, updated_at = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, price, FormatTime(at), positionID)
	if err != nil {
		return fmt.Errorf("failed to update market price: %w", err)
	}

	return expectAffected(result, apperrors.ErrPositionNotFound)
}

func scanPosition(row scanner) (model.Position, error) {
	var p model.Position
	var marketPrice decimal.NullDecimal
	var lots, openedAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.PortfolioID,
		&p.InstrumentCode,
		&p.InstrumentName,
		&p.InstrumentClass,
		&p.Quantity,
		&p.AverageCost,
		&marketPrice,
		&lots,
		&openedAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Position{}, err
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to scan position: %w", err)
	}

	p.MarketPrice = decimalPtr(marketPrice)
	if err := json.Unmarshal([]byte(lots), &p.Lots); err != nil {
		return model.Position{}, fmt.Errorf("failed to decode lots of position %s: %w", p.ID, err)
	}
	if p.OpenedAt, err = ParseTime(openedAt); err != nil {
		return model.Position{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Position{}, err
	}

	return p, nil
}

func encodeLots(lots []model.Lot) (string, error) {
	if lots == nil {
		return "[]", nil
	}
	b, err := json.Marshal(lots)
	if err != nil {
		return "", fmt.Errorf("failed to encode lots: %w", err)
	}
	return string(b), nil
}
