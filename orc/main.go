package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/optfolio/optfolio/cmd"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion. Running
// "COMP_INSTALL=1 orc" installs it into the shell profile.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"store-file":   predict.Files("*"),
		"store-driver": predict.Set{"json", "sqlite"},
	},
	Sub: map[string]*complete.Command{
		"import": {Flags: map[string]complete.Predictor{
			"f":   predict.Files("*.jsonl"),
			"csv": predict.Files("*.csv"),
			"n":   predict.Nothing,
		}},
		"closing": {Flags: map[string]complete.Predictor{
			"f":   predict.Files("*.jsonl"),
			"csv": predict.Files("*.csv"),
			"d":   predict.Something,
		}},
		"positions": {},
		"stock": {Flags: map[string]complete.Predictor{
			"f":   predict.Files("*.jsonl"),
			"csv": predict.Files("*.csv"),
		}},
		"validate": {Flags: map[string]complete.Predictor{
			"s": predict.Files("*.json"),
		}},
		"convert": {Flags: map[string]complete.Predictor{
			"f": predict.Files("*.csv"),
			"o": predict.Files("*.jsonl"),
		}},
		"topic": {},
	},
}

func main() {
	// A .env file in the working directory can set ORC_STORE and
	// ORC_STORE_DRIVER. Missing files are fine.
	godotenv.Load()

	completion.Complete("orc")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
