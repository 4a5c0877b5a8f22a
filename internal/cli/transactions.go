package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/validation"
)

// recordCmd records a transaction against a portfolio.
type recordCmd struct {
	*app
	portfolio string
	kind      string
	code      string
	name      string
	class     string
	quantity  string
	price     string
	fee       string
	tax       string
	date      string
	note      string
}

func (*recordCmd) Name() string     { return "record" }
func (*recordCmd) Synopsis() string { return "record a buy, sell or other transaction" }
func (*recordCmd) Usage() string {
	return `portfolioctl record -p <portfolio> [-kind buy] -code <code> -qty <quantity> -price <price> [-fee <fee>] [-tax <tax>] [-d <date>] [-class <class>]

  Records a transaction and prints the resulting position.
  An omitted fee is computed from the gross value.
`
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio ID or name.")
	f.StringVar(&c.kind, "kind", string(model.KindBuy), "Transaction kind (buy, sell, dividend, split, ...).")
	f.StringVar(&c.code, "code", "", "Instrument code, e.g. PETR4.")
	f.StringVar(&c.name, "name", "", "Instrument name, used when the position is opened.")
	f.StringVar(&c.class, "class", "", "Instrument class (equity, etf, reit, ...).")
	f.StringVar(&c.quantity, "qty", "", "Quantity.")
	f.StringVar(&c.price, "price", "", "Unit price.")
	f.StringVar(&c.fee, "fee", "", "Fee. Computed from the gross value when omitted.")
	f.StringVar(&c.tax, "tax", "", "Tax withheld.")
	f.StringVar(&c.date, "d", time.Now().UTC().Format(time.DateOnly), "Transaction date (YYYY-MM-DD or RFC3339).")
	f.StringVar(&c.note, "note", "", "Free text note.")
}

func (c *recordCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.portfolio == "" {
		fmt.Fprintln(c.errOut, "Error: -p is required.")
		return subcommands.ExitUsageError
	}

	req := request.TransactionRequest{
		Kind:            c.kind,
		InstrumentCode:  c.code,
		InstrumentName:  c.name,
		InstrumentClass: c.class,
		Date:            c.date,
		Note:            c.note,
	}
	var err error
	if req.Quantity, err = parseDecimal("qty", c.quantity); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if req.UnitPrice, err = parseDecimal("price", c.price); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if req.Fee, err = parseOptionalDecimal("fee", c.fee); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if req.Tax, err = parseOptionalDecimal("tax", c.tax); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	draft, err := validation.ValidateTransaction(req)
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "recording transaction", func(e *env) error {
		p, err := resolvePortfolio(ctx, e, c.portfolio)
		if err != nil {
			return err
		}
		t, pos, err := e.Transaction.ApplyTransaction(ctx, p.ID, draft)
		if err != nil {
			return err
		}
		md, err := c.render("transaction.md", struct {
			Transaction model.Transaction
			Position    model.Position
		}{t, pos})
		if err != nil {
			return err
		}
		c.printMarkdown(md)
		return nil
	})
}

// reverseCmd undoes a recorded transaction.
type reverseCmd struct {
	*app
	portfolio string
}

func (*reverseCmd) Name() string     { return "reverse" }
func (*reverseCmd) Synopsis() string { return "reverse a recorded transaction" }
func (*reverseCmd) Usage() string {
	return `portfolioctl reverse -p <portfolio> <transaction-id>

  Removes the transaction and restores the position as if it was never recorded.
`
}

func (c *reverseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "Portfolio ID or name.")
}

func (c *reverseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.portfolio == "" || f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: reverse expects -p and one transaction ID.")
		return subcommands.ExitUsageError
	}

	return c.withEnv(ctx, "reversing transaction", func(e *env) error {
		p, err := resolvePortfolio(ctx, e, c.portfolio)
		if err != nil {
			return err
		}
		pos, err := e.Transaction.ReverseTransaction(ctx, p.ID, f.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Reversed %s. %s now holds %s at an average cost of %s.\n",
			f.Arg(0), pos.InstrumentCode, formatQuantity(pos.Quantity), formatMoney(pos.AverageCost, c.currency))
		return nil
	})
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("-%s is required", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing -%s: %w", name, err)
	}
	return d, nil
}

func parseOptionalDecimal(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDecimal(name, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
