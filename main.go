package main

import (
	"fmt"
	"os"

	"github.com/btools-dev/btools/internal/cli"
	"github.com/btools-dev/btools/internal/errors"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(errors.ExitCode(err))
	}
}
