// Package main provides the entry point for the imgtx CLI.
package main

import (
	"context"
	"os"

	"github.com/matteofrigo/imaging-transcriptomics/internal/cli"
)

// Build information set via ldflags at release time.
var (
	version = "" //nolint:gochecknoglobals // set by -ldflags
	commit  = "" //nolint:gochecknoglobals // set by -ldflags
	date    = "" //nolint:gochecknoglobals // set by -ldflags
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
