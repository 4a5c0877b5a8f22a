// Package cli implements portfolioctl, a console client working directly on the portfolio database.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/quotes"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/service"
)

// env is the set of services a command works with, opened per invocation.
type env struct {
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Quote       *service.QuoteService
	Rentability *service.RentabilityService
	schedule    config.SchedulerConfig
	close       func() error
}

// Close releases the database and quote cache behind the services.
func (e *env) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

// app is shared by every subcommand. As a CLI it lives for one command only.
type app struct {
	out      io.Writer
	errOut   io.Writer
	currency string
	raw      bool
	open     func(ctx context.Context) (*env, error)
}

// Register adds the portfolioctl subcommands to c and the global flags to f.
// A main package calls Register() and then Execute() on the user-selected command.
func Register(c *subcommands.Commander, f *flag.FlagSet) {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		open:   openFromConfig,
	}
	f.StringVar(&a.currency, "currency", "BRL", "ISO currency code used to format money")
	f.BoolVar(&a.raw, "raw", false, "print markdown as-is instead of rendering it for the terminal")

	c.Register(&portfoliosCmd{app: a}, "portfolios")
	c.Register(&refreshCmd{app: a}, "portfolios")

	c.Register(&recordCmd{app: a}, "transactions")
	c.Register(&reverseCmd{app: a}, "transactions")

	c.Register(&reportCmd{app: a}, "reports")
	c.Register(&taxCmd{app: a}, "reports")

	c.Register(&feeCmd{app: a}, "tools")
	c.Register(&affordCmd{app: a}, "tools")
}

// openFromConfig opens the database named by the environment configuration,
// the same way the server does.
func openFromConfig(_ context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	source, closeQuotes, err := quotes.FromConfig(cfg.Quotes)
	if err != nil {
		db.Close()
		return nil, err
	}

	e := newEnv(
		repository.NewPortfolioRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		db, source, cfg.Ledger.ReverseMode, cfg.Scheduler,
	)
	e.close = func() error {
		return errors.Join(closeQuotes(), db.Close())
	}
	return e, nil
}

func newEnv(
	portfolioRepo *repository.PortfolioRepository,
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	db *sql.DB,
	source quotes.Source,
	mode ledger.ReverseMode,
	schedule config.SchedulerConfig,
) *env {
	locks := service.NewPortfolioLocks()
	return &env{
		Portfolio:   service.NewPortfolioService(db, portfolioRepo, positionRepo, transactionRepo, locks, nil),
		Transaction: service.NewTransactionService(db, portfolioRepo, positionRepo, transactionRepo, mode, locks, nil),
		Quote:       service.NewQuoteService(db, portfolioRepo, positionRepo, transactionRepo, source, locks, nil),
		Rentability: service.NewRentabilityService(portfolioRepo, positionRepo, transactionRepo, calculator.DefaultInflationTable()),
		schedule:    schedule,
	}
}

// withEnv opens the services, runs fn and closes them again.
// Errors are printed with the given context and turned into an exit status.
func (a *app) withEnv(ctx context.Context, what string, fn func(*env) error) subcommands.ExitStatus {
	e, err := a.open(ctx)
	if err != nil {
		fmt.Fprintf(a.errOut, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	if err := fn(e); err != nil {
		fmt.Fprintf(a.errOut, "Error %s: %v\n", what, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// resolvePortfolio finds a portfolio by ID, or else by case-insensitive name.
func resolvePortfolio(ctx context.Context, e *env, ref string) (model.Portfolio, error) {
	ref = strings.TrimSpace(ref)
	if _, err := uuid.Parse(ref); err == nil {
		return e.Portfolio.GetPortfolio(ctx, ref)
	}

	all, err := e.Portfolio.GetAllPortfolios(ctx)
	if err != nil {
		return model.Portfolio{}, err
	}
	for _, p := range all {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return model.Portfolio{}, fmt.Errorf("%w: %q", apperrors.ErrPortfolioNotFound, ref)
}

// printMarkdown writes md to the app output, rendered for the terminal unless raw output was asked for.
func (a *app) printMarkdown(md string) {
	if a.raw {
		fmt.Fprint(a.out, md)
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(a.out, md)
		return
	}
	rendered, err := r.Render(md)
	if err != nil {
		fmt.Fprint(a.out, md)
		return
	}
	fmt.Fprint(a.out, rendered)
}
