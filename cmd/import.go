package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/optfolio/optfolio"
	"github.com/optfolio/optfolio/renderer"
)

type importCmd struct {
	file     string
	activity bool
	dryRun   bool
}

func (*importCmd) Name() string { return "import" }
func (*importCmd) Synopsis() string {
	return "reconcile a batch of brokerage records into the position store"
}
func (*importCmd) Usage() string {
	return `orc import -f <records.jsonl> [-csv] [-n]

  Pairs the batch's opening transactions into strategies, merges them
  incrementally against the position store, and commits the result in a
  single atomic write. Replaying a batch that was already applied is a
  no-op. With -n the result is printed but nothing is committed.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "Records file to import (JSONL, or CSV with -csv).")
	f.BoolVar(&p.activity, "csv", false, "Treat the input as a raw broker activity CSV export.")
	f.BoolVar(&p.dryRun, "n", false, "Dry run: report what would change without committing.")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	result := optfolio.Reconcile(batch, snap, optfolio.Today())

	if !p.dryRun {
		runID := uuid.NewString()
		if err := st.Apply(runID, result.Merge); err != nil {
			fmt.Fprintf(os.Stderr, "Error committing run %s: %v\n", runID, err)
			return subcommands.ExitFailure
		}
	}

	printMarkdown(renderer.MergeSummary(result.Merge))
	return subcommands.ExitSuccess
}
