package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/stream"
)

// TransactionService records, edits and removes ledger entries.
//
// Every mutation is one database transaction: the transaction row, the position
// it moves and the revalued portfolio are committed together or not at all.
// Writers are serialized per portfolio.
type TransactionService struct {
	db          *sql.DB
	repos       repositories
	reverseMode ledger.ReverseMode
	locks       *PortfolioLocks
	events      Publisher
	now         func() time.Time
}

// NewTransactionService creates a new TransactionService.
// locks must be shared with every other service that writes portfolios; events may be nil.
func NewTransactionService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	reverseMode ledger.ReverseMode,
	locks *PortfolioLocks,
	events Publisher,
) *TransactionService {
	return &TransactionService{
		db: db,
		repos: repositories{
			portfolios:   portfolioRepo,
			positions:    positionRepo,
			transactions: transactionRepo,
		},
		reverseMode: reverseMode,
		locks:       locks,
		events:      publisherOrDiscard(events),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetTransaction retrieves a transaction by ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	return s.repos.transactions.GetTransaction(ctx, transactionID)
}

// ListTransactions lists a portfolio's transactions, newest first.
// Returns ErrInvalidDateRange when filter.From is after filter.To.
func (s *TransactionService) ListTransactions(ctx context.Context, portfolioID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if _, err := s.repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
		return nil, err
	}
	filter.InstrumentCode = ledger.NormalizeCode(filter.InstrumentCode)
	return s.repos.transactions.GetTransactions(ctx, portfolioID, filter)
}

// ApplyTransaction records a new transaction and folds it into its position.
//
// A missing fee is filled in from the fee schedule. The position is created at
// zero quantity the first time the portfolio trades the instrument. A transaction
// dated before the latest one of its position refolds the whole position history.
func (s *TransactionService) ApplyTransaction(ctx context.Context, portfolioID string, draft model.TransactionDraft) (model.Transaction, model.Position, error) {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	now := s.now()
	var t model.Transaction
	var pos model.Position
	var p model.Portfolio

	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := s.repos.withTx(tx)
		if _, err := repos.portfolios.GetPortfolioOnID(ctx, portfolioID); err != nil {
			return err
		}

		var err error
		t, pos, err = s.apply(ctx, repos, portfolioID, uuid.New().String(), draft, now, now)
		if err != nil {
			return err
		}

		p, err = revalue(ctx, repos, portfolioID, now)
		return err
	})
	if err != nil {
		s.rejected(err)
		return model.Transaction{}, model.Position{}, fmt.Errorf("apply transaction: %w", err)
	}

	metrics.TransactionsTotal.WithLabelValues(string(t.Kind), "apply").Inc()
	slog.InfoContext(ctx, "transaction applied",
		"portfolio_id", portfolioID,
		"transaction_id", t.ID,
		"kind", t.Kind,
		"instrument", t.InstrumentCode,
		"quantity", t.Quantity.String(),
		"position_quantity", pos.Quantity.String(),
		"average_cost", pos.AverageCost.String(),
	)
	s.publish(stream.EventTransactionApplied, t, p)
	recordRevaluation(p, s.events)

	return t, pos, nil
}

// UpdateTransaction replaces a transaction. The old effect is reversed and the new
// one applied, possibly on another instrument, in a single unit of work. The
// transaction keeps its ID and creation time.
func (s *TransactionService) UpdateTransaction(ctx context.Context, transactionID string, draft model.TransactionDraft) (model.Transaction, model.Position, error) {
	old, err := s.repos.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return model.Transaction{}, model.Position{}, err
	}

	unlock := s.locks.Lock(old.PortfolioID)
	defer unlock()

	now := s.now()
	var t model.Transaction
	var pos model.Position
	var p model.Portfolio

	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := s.repos.withTx(tx)

		// Re-read under the lock.
		current, err := repos.transactions.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if _, err := s.remove(ctx, repos, current, now); err != nil {
			return err
		}

		t, pos, err = s.apply(ctx, repos, current.PortfolioID, current.ID, draft, current.CreatedAt, now)
		if err != nil {
			return err
		}

		p, err = revalue(ctx, repos, current.PortfolioID, now)
		return err
	})
	if err != nil {
		s.rejected(err)
		return model.Transaction{}, model.Position{}, fmt.Errorf("update transaction: %w", err)
	}

	metrics.TransactionsTotal.WithLabelValues(string(t.Kind), "update").Inc()
	slog.InfoContext(ctx, "transaction updated",
		"portfolio_id", t.PortfolioID,
		"transaction_id", t.ID,
		"kind", t.Kind,
		"instrument", t.InstrumentCode,
	)
	s.publish(stream.EventTransactionUpdated, t, p)
	recordRevaluation(p, s.events)

	return t, pos, nil
}

// ReverseTransaction undoes a transaction of portfolioID and deletes it, returning
// the resulting position. Returns ErrUnknownInstrument when the position the
// transaction was applied to no longer exists.
func (s *TransactionService) ReverseTransaction(ctx context.Context, portfolioID, transactionID string) (model.Position, error) {
	unlock := s.locks.Lock(portfolioID)
	defer unlock()

	now := s.now()
	var old model.Transaction
	var pos model.Position
	var p model.Portfolio

	err := inTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := s.repos.withTx(tx)

		var err error
		old, err = repos.transactions.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		if old.PortfolioID != portfolioID {
			return apperrors.ErrTransactionNotFound
		}

		if pos, err = s.remove(ctx, repos, old, now); err != nil {
			return err
		}

		p, err = revalue(ctx, repos, portfolioID, now)
		return err
	})
	if err != nil {
		s.rejected(err)
		return model.Position{}, fmt.Errorf("reverse transaction: %w", err)
	}

	metrics.TransactionsTotal.WithLabelValues(string(old.Kind), "reverse").Inc()
	slog.InfoContext(ctx, "transaction reversed",
		"portfolio_id", portfolioID,
		"transaction_id", transactionID,
		"kind", old.Kind,
		"instrument", old.InstrumentCode,
		"mode", s.reverseMode,
		"position_quantity", pos.Quantity.String(),
		"average_cost", pos.AverageCost.String(),
	)
	s.publish(stream.EventTransactionReversed, old, p)
	recordRevaluation(p, s.events)

	return pos, nil
}

// DeleteTransaction reverses and deletes a transaction identified only by its ID.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	t, err := s.repos.transactions.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	_, err = s.ReverseTransaction(ctx, t.PortfolioID, transactionID)
	return err
}

// apply builds the transaction from draft, folds it into its position and stores both.
func (s *TransactionService) apply(
	ctx context.Context,
	repos repositories,
	portfolioID, transactionID string,
	draft model.TransactionDraft,
	createdAt, now time.Time,
) (model.Transaction, model.Position, error) {
	code := ledger.NormalizeCode(draft.InstrumentCode)
	if code == "" {
		return model.Transaction{}, model.Position{}, fmt.Errorf("%w: instrument code is required", apperrors.ErrInvalidTransaction)
	}
	if !draft.Kind.Valid() {
		return model.Transaction{}, model.Position{}, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidTransaction, draft.Kind)
	}

	pos, err := repos.positions.GetPositionByInstrument(ctx, portfolioID, code)
	isNew := errors.Is(err, apperrors.ErrPositionNotFound)
	switch {
	case isNew:
		if draft.InstrumentClass == "" {
			draft.InstrumentClass = model.ClassOther
		}
		pos = ledger.NewPosition(uuid.New().String(), portfolioID, draft, now)
	case err != nil:
		return model.Transaction{}, model.Position{}, err
	default:
		if draft.InstrumentName != "" {
			pos.InstrumentName = draft.InstrumentName
		}
	}

	t := newTransaction(transactionID, portfolioID, pos, draft, createdAt)

	var history []model.Transaction
	if !isNew {
		if history, err = repos.transactions.GetTransactionsByPosition(ctx, pos.ID); err != nil {
			return model.Transaction{}, model.Position{}, err
		}
	}

	var next model.Position
	if n := len(history); n == 0 || !t.TransactedAt.Before(history[n-1].TransactedAt) {
		if t.Kind == model.KindSell {
			t.CostBasisAtSale = pos.AverageCost
		}
		if next, err = ledger.Apply(pos, t, now); err != nil {
			return model.Transaction{}, model.Position{}, err
		}
	} else {
		var ordered []model.Transaction
		if next, ordered, err = refold(ctx, repos, pos, append(history, t), t.ID, now); err != nil {
			return model.Transaction{}, model.Position{}, err
		}
		for _, o := range ordered {
			if o.ID == t.ID {
				t = o
			}
		}
	}

	// The position must exist before the transaction row references it.
	if err := repos.positions.UpsertPosition(ctx, &next); err != nil {
		return model.Transaction{}, model.Position{}, err
	}
	if err := repos.transactions.InsertTransaction(ctx, &t); err != nil {
		return model.Transaction{}, model.Position{}, err
	}

	return t, next, nil
}

// remove takes a stored transaction out of its position and deletes it.
//
// In replay mode the remaining history is refolded, so removing a transaction
// leaves the position as if it had never been recorded. Legacy mode reverses
// the quantity effect directly and keeps the average cost.
func (s *TransactionService) remove(ctx context.Context, repos repositories, old model.Transaction, now time.Time) (model.Position, error) {
	pos, err := repos.positions.GetPositionOnID(ctx, old.PositionID)
	if errors.Is(err, apperrors.ErrPositionNotFound) {
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownInstrument, old.InstrumentCode)
	}
	if err != nil {
		return model.Position{}, err
	}

	var next model.Position
	if s.reverseMode == ledger.ReverseModeLegacy {
		if next, err = ledger.Reverse(pos, old, s.reverseMode, now); err != nil {
			return model.Position{}, err
		}
	} else {
		history, err := repos.transactions.GetTransactionsByPosition(ctx, pos.ID)
		if err != nil {
			return model.Position{}, err
		}
		rest := make([]model.Transaction, 0, len(history))
		for _, h := range history {
			if h.ID != old.ID {
				rest = append(rest, h)
			}
		}
		if next, _, err = refold(ctx, repos, pos, rest, "", now); err != nil {
			return model.Position{}, err
		}
	}

	if err := repos.transactions.DeleteTransaction(ctx, old.ID); err != nil {
		return model.Position{}, err
	}
	if err := repos.positions.UpsertPosition(ctx, &next); err != nil {
		return model.Position{}, err
	}
	return next, nil
}

// refold rebuilds pos from history and rewrites every stored sell whose cost basis
// moved. pendingID names a transaction of history that is not stored yet.
func refold(
	ctx context.Context,
	repos repositories,
	pos model.Position,
	history []model.Transaction,
	pendingID string,
	now time.Time,
) (model.Position, []model.Transaction, error) {
	before := make(map[string]model.Transaction, len(history))
	for _, h := range history {
		before[h.ID] = h
	}

	next, ordered, err := ledger.Replay(ledger.Reset(pos), history, now)
	if err != nil {
		return model.Position{}, nil, err
	}

	for i := range ordered {
		o := ordered[i]
		if o.Kind != model.KindSell || o.ID == pendingID {
			continue
		}
		if prev := before[o.ID]; !prev.CostBasisAtSale.Equal(o.CostBasisAtSale) {
			if err := repos.transactions.UpdateTransaction(ctx, &o); err != nil {
				return model.Position{}, nil, err
			}
		}
	}
	return next, ordered, nil
}

func newTransaction(id, portfolioID string, pos model.Position, draft model.TransactionDraft, createdAt time.Time) model.Transaction {
	if draft.TransactedAt.IsZero() {
		draft.TransactedAt = createdAt
	}
	t := model.Transaction{
		ID:              id,
		PortfolioID:     portfolioID,
		PositionID:      pos.ID,
		Kind:            draft.Kind,
		InstrumentCode:  pos.InstrumentCode,
		InstrumentClass: pos.InstrumentClass,
		Quantity:        draft.Quantity,
		UnitPrice:       draft.UnitPrice,
		TransactedAt:    draft.TransactedAt.UTC(),
		SettledAt:       draft.SettledAt,
		Note:            draft.Note,
		CreatedAt:       createdAt,
	}
	if draft.Tax != nil {
		t.Tax = *draft.Tax
	}
	if draft.Fee != nil {
		t.Fee = *draft.Fee
	} else {
		t.Fee = calculator.Fee(t.Finalize().GrossValue)
	}
	return t.Finalize()
}

func (s *TransactionService) rejected(err error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientPosition):
		metrics.TransactionRejections.WithLabelValues("insufficient_position").Inc()
	case errors.Is(err, apperrors.ErrInvalidTransaction):
		metrics.TransactionRejections.WithLabelValues("invalid_transaction").Inc()
	case errors.Is(err, apperrors.ErrUnknownInstrument):
		metrics.TransactionRejections.WithLabelValues("unknown_instrument").Inc()
	}
}

func (s *TransactionService) publish(eventType string, t model.Transaction, p model.Portfolio) {
	s.events.Publish(stream.Event{
		Type:           eventType,
		PortfolioID:    t.PortfolioID,
		TransactionID:  t.ID,
		InstrumentCode: t.InstrumentCode,
		MarketValue:    p.MarketValue.StringFixed(2),
	})
}
