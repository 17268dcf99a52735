// Package cmd implements the CLI application to reconcile brokerage activity
// into consolidated positions.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/optfolio/optfolio"
	"github.com/optfolio/optfolio/store"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "reconciliation")
	c.Register(&closingCmd{}, "reconciliation")

	c.Register(&positionsCmd{}, "positions")
	c.Register(&stockCmd{}, "positions")
	c.Register(&validateCmd{}, "positions")

	c.Register(&convertCmd{}, "records")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var storeFile = flag.String("store-file", envOr("ORC_STORE", "positions.json"), "Path to the position store")
var storeDriver = flag.String("store-driver", envOr("ORC_STORE_DRIVER", "json"), "Position store driver (json, sqlite)")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore opens the position store selected by the global flags.
func openStore() (store.Store, error) {
	switch *storeDriver {
	case "json":
		return store.NewJSONStore(*storeFile), nil
	case "sqlite":
		return store.NewSQLiteStore(*storeFile)
	default:
		return nil, fmt.Errorf("unknown store driver %q (want json or sqlite)", *storeDriver)
	}
}

// decodeBatch reads a batch of normalized records, or a raw broker activity
// CSV when activity is true.
func decodeBatch(filename string, activity bool) (optfolio.Batch, []string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return optfolio.Batch{}, nil, fmt.Errorf("cannot open records file %q: %w", filename, err)
	}
	defer f.Close()

	if activity {
		return optfolio.ImportActivity(f)
	}
	b, err := optfolio.DecodeRecords(f)
	return b, nil, err
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails (e.g. output is not a terminal).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printWarnings reports dropped import rows on stderr.
func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
