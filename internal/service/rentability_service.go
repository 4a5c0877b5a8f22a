package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
)

// RentabilityService computes return and tax reports from stored positions and history.
// It only reads; prices come from the positions as last stored.
type RentabilityService struct {
	repos     repositories
	inflation calculator.InflationTable
	now       func() time.Time
}

// NewRentabilityService creates a new RentabilityService.
func NewRentabilityService(
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	inflation calculator.InflationTable,
) *RentabilityService {
	return &RentabilityService{
		repos: repositories{
			portfolios:   portfolioRepo,
			positions:    positionRepo,
			transactions: transactionRepo,
		},
		inflation: inflation,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InstrumentRentability reports the return of one instrument of a portfolio.
// Returns ErrUnknownInstrument when the portfolio never held code.
func (s *RentabilityService) InstrumentRentability(ctx context.Context, portfolioID, code string) (model.RentabilityReport, error) {
	if _, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return model.RentabilityReport{}, err
	}

	code = ledger.NormalizeCode(code)
	pos, err := s.repos.positions.GetPositionByInstrument(ctx, portfolioID, code)
	if errors.Is(err, apperrors.ErrPositionNotFound) {
		return model.RentabilityReport{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownInstrument, code)
	}
	if err != nil {
		return model.RentabilityReport{}, err
	}

	history, err := s.repos.transactions.GetTransactionsByPosition(ctx, pos.ID)
	if err != nil {
		return model.RentabilityReport{}, err
	}

	return calculator.InstrumentRentability(pos, history, nil, s.now()), nil
}

// PortfolioRentability aggregates the reports of every position of a portfolio,
// closed positions included so that realized results still count.
func (s *RentabilityService) PortfolioRentability(ctx context.Context, portfolioID string) (model.PortfolioRentabilityReport, error) {
	p, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return model.PortfolioRentabilityReport{}, err
	}

	positions, err := s.repos.positions.GetPositionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.PortfolioRentabilityReport{}, err
	}

	now := s.now()
	reports := make([]model.RentabilityReport, 0, len(positions))
	for _, pos := range positions {
		history, err := s.repos.transactions.GetTransactionsByPosition(ctx, pos.ID)
		if err != nil {
			return model.PortfolioRentabilityReport{}, err
		}
		reports = append(reports, calculator.InstrumentRentability(pos, history, nil, now))
	}

	return calculator.PortfolioRentability(p, reports, now), nil
}

// EstimateTax estimates the capital-gains tax owed on a portfolio's sells,
// with the month-by-month breakdown.
func (s *RentabilityService) EstimateTax(ctx context.Context, portfolioID string) (model.TaxEstimate, error) {
	if _, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return model.TaxEstimate{}, err
	}

	sells, err := s.repos.transactions.GetSellsByPortfolio(ctx, portfolioID)
	if err != nil {
		return model.TaxEstimate{}, err
	}

	months := calculator.MonthlyTax(sells)
	if months == nil {
		months = []model.MonthlyTax{}
	}
	return model.TaxEstimate{
		PortfolioID: portfolioID,
		Total:       calculator.EstimateTax(sells),
		Months:      months,
	}, nil
}

// RealReturn compares the growth of a portfolio's initial capital up to asOf with
// the inflation accumulated since the portfolio was created. A zero asOf means now.
func (s *RentabilityService) RealReturn(ctx context.Context, portfolioID string, asOf time.Time) (model.RealReturn, error) {
	p, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID)
	if err != nil {
		return model.RealReturn{}, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	if p.CreatedAt.After(asOf) {
		return model.RealReturn{}, fmt.Errorf("%w: %s is before the portfolio was created", apperrors.ErrInvalidDateRange, asOf.Format(time.DateOnly))
	}

	nominal := decimal.Zero
	if p.InitialCapital.IsPositive() {
		nominal = p.MarketValue.Sub(p.InitialCapital).DivRound(p.InitialCapital, calculator.PercentPlaces)
	}

	return model.RealReturn{
		PortfolioID:          p.ID,
		From:                 p.CreatedAt,
		To:                   asOf,
		InitialCapital:       p.InitialCapital,
		CurrentValue:         p.MarketValue,
		NominalReturn:        nominal,
		AccumulatedInflation: s.inflation.Accumulated(p.CreatedAt, asOf).Round(calculator.PercentPlaces),
		RealReturn:           s.inflation.RealReturn(p.InitialCapital, p.MarketValue, p.CreatedAt, asOf),
		InflationAdjusted:    s.inflation.Inflate(p.InitialCapital, p.CreatedAt, asOf),
	}, nil
}
