// Package cli provides the command-line interface for the imaging
// transcriptomics pipeline.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// newRootCmd creates and returns the root command for the imgtx CLI.
// This function-based approach avoids package-level globals, making the
// code more testable.
func newRootCmd(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgtx",
		Short: "Imaging transcriptomics analysis pipeline",
		Long: `imgtx correlates the regional pattern of a volumetric brain scan with
gene expression from the Allen Human Brain Atlas.

A run reduces the input scan to a region-averaged feature vector, fits a
partial least squares regression against the bundled expression matrix, and
writes plots, a gene association table, and a summary report into a
per-run output directory.`,
		Version: formatVersion(info),
		// Run displays help when the root command is invoked without
		// subcommands.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		// SilenceUsage prevents printing usage on error
		// (we handle our own error messages)
		SilenceUsage: true,
	}

	AddRunCommand(cmd)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	cmd := newRootCmd(info)
	return cmd.ExecuteContext(ctx)
}
