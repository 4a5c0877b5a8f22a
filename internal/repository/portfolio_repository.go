package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// It handles retrieving portfolio records and their cached market value.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const portfolioColumns = `id, name, description, objective, risk_profile, initial_capital, market_value, revalued_at, created_at, updated_at`

// GetPortfolios retrieves all portfolios ordered by name.
func (r *PortfolioRepository) GetPortfolios(ctx context.Context) ([]model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio ORDER BY name, id`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolioOnID retrieves a single portfolio by its ID.
// Returns apperrors.ErrPortfolioNotFound when no row matches.
func (r *PortfolioRepository) GetPortfolioOnID(ctx context.Context, portfolioID string) (model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio WHERE id = ?`

	p, err := scanPortfolio(r.getQuerier().QueryRowContext(ctx, query, portfolioID))
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// GetStalePortfolios returns portfolios that were never revalued or were revalued before cutoff.
func (r *PortfolioRepository) GetStalePortfolios(ctx context.Context, cutoff time.Time) ([]model.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolio
		WHERE revalued_at IS NULL OR revalued_at < ?
		ORDER BY revalued_at, id`

	rows, err := r.getQuerier().QueryContext(ctx, query, FormatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to query stale portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stale portfolios: %w", err)
	}

	return portfolios, nil
}

// InsertPortfolio creates a new portfolio row.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `INSERT INTO portfolio (` + portfolioColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Objective,
		p.RiskProfile,
		p.InitialCapital,
		p.MarketValue,
		formatNullTime(p.RevaluedAt),
		FormatTime(p.CreatedAt),
		FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}

// UpdatePortfolio updates the user-editable fields of a portfolio.
func (r *PortfolioRepository) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	query := `
		UPDATE portfolio
		SET name = ?, description = ?, objective = ?, risk_profile = ?, initial_capital = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Name,
		p.Description,
		p.Objective,
		p.RiskProfile,
		p.InitialCapital,
		FormatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}

	return expectAffected(result, apperrors.ErrPortfolioNotFound)
}

// UpdateMarketValue stores the revalued market value of a portfolio.
func (r *PortfolioRepository) UpdateMarketValue(ctx context.Context, p *model.Portfolio) error {
	query := `UPDATE portfolio SET market_value = ?, revalued_at = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.MarketValue,
		formatNullTime(p.RevaluedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio market value: %w", err)
	}

	return expectAffected(result, apperrors.ErrPortfolioNotFound)
}

// DeletePortfolio removes a portfolio. Positions and transactions cascade.
func (r *PortfolioRepository) DeletePortfolio(ctx context.Context, portfolioID string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM portfolio WHERE id = ?`, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	return expectAffected(result, apperrors.ErrPortfolioNotFound)
}

func scanPortfolio(row scanner) (model.Portfolio, error) {
	var p model.Portfolio
	var revaluedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Objective,
		&p.RiskProfile,
		&p.InitialCapital,
		&p.MarketValue,
		&revaluedAt,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, err
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio: %w", err)
	}

	if p.RevaluedAt, err = parseNullTime(revaluedAt); err != nil {
		return model.Portfolio{}, err
	}
	if p.CreatedAt, err = ParseTime(createdAt); err != nil {
		return model.Portfolio{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// expectAffected turns a zero-row update or delete into notFound.
func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
