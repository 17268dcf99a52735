package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/optfolio/optfolio"
)

type convertCmd struct {
	file   string
	output string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert a broker activity CSV into normalized records" }
func (*convertCmd) Usage() string {
	return `orc convert -f <activity.csv> [-o <records.jsonl>]

  Converts a raw broker activity CSV export into the normalized JSONL
  records format, resolving blank continuation rows along the way. Writes
  to stdout unless -o is given.
`
}

func (p *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "f", "", "Broker activity CSV export to convert.")
	f.StringVar(&p.output, "o", "", "Output records file (defaults to stdout).")
}

func (p *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -f is required")
		return subcommands.ExitUsageError
	}

	batch, warnings, err := decodeBatch(p.file, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printWarnings(warnings)

	out := os.Stdout
	if p.output != "" {
		out, err = os.Create(p.output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return subcommands.ExitFailure
		}
		defer out.Close()
	}

	if err := optfolio.EncodeRecords(out, batch); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
