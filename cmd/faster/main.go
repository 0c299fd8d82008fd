// Package main provides the entry point for the faster CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/faster/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals // build metadata
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if code := cli.ExitCodeForError(err); code != cli.ExitSuccess {
		if code == cli.ExitInvalidInput {
			_, _ = fmt.Fprintln(os.Stderr, "Run 'faster --help' for usage.")
		}
		os.Exit(code)
	}
}
