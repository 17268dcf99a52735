package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/optfolio/optfolio"
	"github.com/optfolio/optfolio/renderer"
)

type validateCmd struct {
	statement string
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "compare the position store with a broker statement" }
func (*validateCmd) Usage() string {
	return `orc validate -s <statement.json>

  Diffs the reconciled option positions against the net contract quantities
  reported by the broker statement, a JSON object mapping ticker to
  quantity. Discrepancies are reported, never fatal.
`
}

func (p *validateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.statement, "s", "", "Broker statement file (JSON, ticker to net contracts).")
}

func (p *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.statement == "" {
		fmt.Fprintln(os.Stderr, "Error: -s is required")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(p.statement)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading statement: %v\n", err)
		return subcommands.ExitFailure
	}
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing statement: %v\n", err)
		return subcommands.ExitFailure
	}
	reported := make(map[string]optfolio.Quantity, len(raw))
	for ticker, qty := range raw {
		reported[ticker] = optfolio.Q(qty)
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	snap, err := st.Snapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report := optfolio.CompareWithBroker(snap, reported)
	printMarkdown(renderer.Validation(report))
	return subcommands.ExitSuccess
}
