package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// reportCmd prints the rentability report of a portfolio.
type reportCmd struct {
	*app
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the rentability of a portfolio" }
func (*reportCmd) Usage() string {
	return `portfolioctl report <portfolio>

  Displays the returns of a portfolio (ID or name) and of each instrument it held,
  valued at the last stored prices.
`
}

func (*reportCmd) SetFlags(*flag.FlagSet) {}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: report expects a portfolio ID or name.")
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "creating report", func(e *env) error {
		p, err := resolvePortfolio(ctx, e, f.Arg(0))
		if err != nil {
			return err
		}
		report, err := e.Rentability.PortfolioRentability(ctx, p.ID)
		if err != nil {
			return err
		}
		md, err := c.render("report.md", report)
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}

// taxCmd prints the monthly capital-gains tax estimate of a portfolio.
type taxCmd struct {
	*app
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "estimate the capital-gains tax owed on sells" }
func (*taxCmd) Usage() string {
	return `portfolioctl tax <portfolio>

  Estimates, month by month, the tax owed on the sells of a portfolio (ID or name).
`
}

func (*taxCmd) SetFlags(*flag.FlagSet) {}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: tax expects a portfolio ID or name.")
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "estimating tax", func(e *env) error {
		p, err := resolvePortfolio(ctx, e, f.Arg(0))
		if err != nil {
			return err
		}
		estimate, err := e.Rentability.EstimateTax(ctx, p.ID)
		if err != nil {
			return err
		}
		md, err := c.render("tax.md", estimate)
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}
