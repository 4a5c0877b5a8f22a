package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/validation"
)

// portfoliosCmd lists portfolios, or creates one with -new.
type portfoliosCmd struct {
	*app
	name        string
	description string
	riskProfile string
	capital     string
}

func (*portfoliosCmd) Name() string     { return "portfolios" }
func (*portfoliosCmd) Synopsis() string { return "list portfolios or create a new one" }
func (*portfoliosCmd) Usage() string {
	return `portfolioctl portfolios [-new <name> [-capital <amount>] [-risk <profile>] [-desc <text>]]

  Without flags, lists every portfolio with its last market value.
  With -new, creates an empty portfolio.
`
}

func (c *portfoliosCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "new", "", "Create a portfolio with this name.")
	f.StringVar(&c.capital, "capital", "0", "Initial capital of the new portfolio.")
	f.StringVar(&c.riskProfile, "risk", "", "Risk profile of the new portfolio (conservative, moderate, aggressive).")
	f.StringVar(&c.description, "desc", "", "Description of the new portfolio.")
}

func (c *portfoliosCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name != "" {
		return c.create(ctx)
	}

	return c.withEnv(ctx, "listing portfolios", func(e *env) error {
		all, err := e.Portfolio.GetAllPortfolios(ctx)
		if err != nil {
			return err
		}
		md, err := c.render("portfolios.md", all)
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}

func (c *portfoliosCmd) create(ctx context.Context) subcommands.ExitStatus {
	capital, err := decimal.NewFromString(c.capital)
	if err != nil {
		fmt.Fprintf(c.errOut, "Error parsing capital: %v\n", err)
		return subcommands.ExitUsageError
	}
	draft, err := validation.ValidatePortfolio(request.PortfolioRequest{
		Name:           c.name,
		Description:    c.description,
		RiskProfile:    c.riskProfile,
		InitialCapital: capital,
	})
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "creating portfolio", func(e *env) error {
		p, err := e.Portfolio.CreatePortfolio(ctx, draft)
		if err != nil {
			return err
		}
		md, err := c.render("portfolios.md", []model.Portfolio{p})
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}

// refreshCmd fetches quotes for the open positions of a portfolio, or of
// several portfolios with -all or -stale.
type refreshCmd struct {
	*app
	all   bool
	stale bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch market prices and revalue portfolios" }
func (*refreshCmd) Usage() string {
	return `portfolioctl refresh <portfolio>
portfolioctl refresh -all | -stale

  Fetches a quote for every open position of the portfolio (ID or name)
  from the configured quote source and revalues it. With -all every
  portfolio is refreshed, with -stale only those the scheduler would pick.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "all", false, "Refresh every portfolio.")
	f.BoolVar(&c.stale, "stale", false, "Refresh portfolios not revalued within the stale window.")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.all || c.stale {
		if f.NArg() != 0 || (c.all && c.stale) {
			fmt.Fprintln(c.errOut, "Error: -all and -stale take no portfolio and exclude each other.")
			return subcommands.ExitUsageError
		}
		return c.refreshMany(ctx)
	}
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: refresh expects a portfolio ID or name.")
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "refreshing prices", func(e *env) error {
		p, err := resolvePortfolio(ctx, e, f.Arg(0))
		if err != nil {
			return err
		}
		resp, err := e.Quote.RefreshPortfolio(ctx, p.ID)
		if err != nil {
			return err
		}
		md, err := c.render("refresh.md", resp)
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}

// refreshMany runs one scheduler pass in the foreground.
func (c *refreshCmd) refreshMany(ctx context.Context) subcommands.ExitStatus {
	return c.withEnv(ctx, "refreshing prices", func(e *env) error {
		sched, err := scheduler.New(e.schedule, e.Portfolio, e.Quote)
		if err != nil {
			return err
		}
		var summary scheduler.Summary
		if c.all {
			summary, err = sched.RefreshAll(ctx)
		} else {
			summary, err = sched.RefreshStale(ctx)
		}
		if err != nil {
			return err
		}
		md, err := c.render("refresh_all.md", summary)
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}
