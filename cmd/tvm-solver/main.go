// Command tvm-solver solves time-value-of-money problems and produces loan
// amortization schedules from the command line, from a YAML batch file or
// over HTTP.
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
