package main

import (
	"fmt"
	"os"

	"github.com/hlfshell/gitdb/internal/cliapp"
)

// Version information for the gitdb CLI, overridden at build time via
// -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "2026-01-01"
	GitCommit = "development"
)

func main() {
	app := cliapp.NewApp(Version, BuildDate, GitCommit)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
