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

type stockCmd struct {
	file     string
	activity bool
}

func (*stockCmd) Name() string     { return "stock" }
func (*stockCmd) Synopsis() string { return "aggregate stock transactions into per-ticker positions" }
func (*stockCmd) Usage() string {
	return `orc stock -f <records.jsonl> [-csv]

  Aggregates the batch's stock transactions into one position per ticker,
  excluding transactions at or before the store's per-ticker cutoff, and
  prints the result without committing anything.
`
}

func (p *stockCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "Records file to aggregate (JSONL, or CSV with -csv).")
	f.BoolVar(&p.activity, "csv", false, "Treat the input as a raw broker activity CSV export.")
}

func (p *stockCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}

	batch, warnings, err := decodeBatch(p.file, p.activity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printWarnings(warnings)

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

	var positions []optfolio.Position
	for _, s := range optfolio.AggregateStocks(batch.Stocks, snap.StockCutoffs()) {
		positions = append(positions, optfolio.NewPosition(s))
	}
	printMarkdown(renderer.Positions(optfolio.NewSnapshot(positions...)))
	return subcommands.ExitSuccess
}
