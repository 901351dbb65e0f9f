// Package main is the entry point for the rxconsole CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tOgg1/rxconsole/internal/rxcli"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rxcli.Execute(rxcli.BuildInfo{Version: version, Commit: commit, Date: date}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
