package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/calculator"
)

// feeCmd previews the fee charged on a trade.
type feeCmd struct {
	*app
}

func (*feeCmd) Name() string     { return "fee" }
func (*feeCmd) Synopsis() string { return "preview the fee charged on a gross trade value" }
func (*feeCmd) Usage() string {
	return `portfolioctl fee <gross>

  Prints the fee charged on a trade of the given gross value and the net amount left.
`
}

func (*feeCmd) SetFlags(*flag.FlagSet) {}

func (c *feeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.errOut, "Error: fee expects exactly one gross value.")
		return subcommands.ExitUsageError
	}
	gross, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(c.errOut, "Error parsing gross value: %v\n", err)
		return subcommands.ExitUsageError
	}
	gross = gross.Round(calculator.MoneyPlaces)
	fee := calculator.Fee(gross)

	md, err := c.render("fee.md", struct{ Gross, Fee, Net decimal.Decimal }{gross, fee, gross.Sub(fee)})
	if err != nil {
		fmt.Fprintf(c.errOut, "Error rendering fee: %v\n", err)
		return subcommands.ExitFailure
	}
	c.printMarkdown(md)
	return subcommands.ExitSuccess
}

// affordCmd computes the largest order a cash balance can pay for.
type affordCmd struct {
	*app
}

func (*affordCmd) Name() string     { return "afford" }
func (*affordCmd) Synopsis() string { return "compute how many units a cash balance can buy" }
func (*affordCmd) Usage() string {
	return `portfolioctl afford <cash> <price>

  Prints the largest quantity whose gross value plus fee fits in cash.
`
}

func (*affordCmd) SetFlags(*flag.FlagSet) {}

func (c *affordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(c.errOut, "Error: afford expects a cash amount and a unit price.")
		return subcommands.ExitUsageError
	}
	cash, err := decimal.NewFromString(f.Arg(0))
	if err != nil {
		fmt.Fprintf(c.errOut, "Error parsing cash: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(f.Arg(1))
	if err != nil {
		fmt.Fprintf(c.errOut, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}

	qty := calculator.MaxAffordableQuantity(cash, price)
	gross := qty.Mul(price).Round(calculator.MoneyPlaces)
	fee := calculator.Fee(gross)

	md, err := c.render("afford.md", struct {
		Cash, UnitPrice, Quantity, Gross, Fee, Total decimal.Decimal
	}{cash, price, qty, gross, fee, gross.Add(fee)})
	if err != nil {
		fmt.Fprintf(c.errOut, "Error rendering order: %v\n", err)
		return subcommands.ExitFailure
	}
	c.printMarkdown(md)
	return subcommands.ExitSuccess
}
