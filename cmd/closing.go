package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/optfolio/optfolio"
	"github.com/optfolio/optfolio/renderer"
)

type closingCmd struct {
	file     string
	activity bool
	date     string
}

func (*closingCmd) Name() string     { return "closing" }
func (*closingCmd) Synopsis() string { return "resolve realized closing prices from a transaction history" }
func (*closingCmd) Usage() string {
	return `orc closing -f <records.jsonl> [-csv] [-d <date>]

  Computes a realized price per closed leg: explicit closes are blended into
  a quantity-weighted average, exercised and assigned legs are valued at
  their intrinsic value against the same-day stock price, and legs expired
  before the given date resolve to zero.
`
}

func (p *closingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "Records file to resolve (JSONL, or CSV with -csv).")
	f.BoolVar(&p.activity, "csv", false, "Treat the input as a raw broker activity CSV export.")
	f.StringVar(&p.date, "d", "", "Reference date for worthless expiry (defaults to today).")
}

func (p *closingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}

	today := optfolio.Today()
	if p.date != "" {
		var err error
		if today, err = optfolio.ParseDate(p.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	batch, warnings, err := decodeBatch(p.file, p.activity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printWarnings(warnings)

	prices := optfolio.ResolveClosingPrices(batch.Options, batch.Stocks, today)
	printMarkdown(renderer.ClosingPrices(prices))
	return subcommands.ExitSuccess
}
