// Package cmd implements the tangle CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/eykd/tangle/internal/tangle/config"
	"github.com/eykd/tangle/internal/tangle/run"
)

// NewRootCmd creates the root tangle command: a single-purpose CLI (no
// subcommands) that reads zero or more document paths and emits target
// files per their tangle directives.
func NewRootCmd() *cobra.Command {
	var (
		outDir  string
		dryRun  bool
		verbose bool
		noClean bool
	)

	root := &cobra.Command{
		Use:           "tangle [paths...]",
		Short:         "tangle - a literate-programming tangler",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTangle(cmd, args, outDir, dryRun, verbose, noClean)
		},
	}

	root.Flags().StringVar(&outDir, "out-dir", "", `scope for the post-tangle cache-cleanup pass (default "dist")`)
	root.Flags().BoolVar(&dryRun, "dry-run", false, "compute targets and report what would be written, without writing or cleaning")
	root.Flags().BoolVar(&verbose, "verbose", false, "log per-document block counts and per-target write paths")
	root.Flags().BoolVar(&noClean, "no-clean", false, "skip the post-tangle cache-cleanup step")

	return root
}

// runTangle loads .tangle.yml, resolves effective options (CLI flags win
// over config over built-in defaults), runs the pipeline, and prints the
// dry-run report when requested.
func runTangle(cmd *cobra.Command, args []string, outDirFlag string, dryRun, verbose, noCleanFlag bool) error {
	cfg, err := config.Load(".tangle.yml")
	if err != nil {
		return fmt.Errorf("loading .tangle.yml: %w", err)
	}

	outDir := cfg.OutDir
	if cmd.Flags().Changed("out-dir") {
		outDir = outDirFlag
	}
	noClean := cfg.NoClean || noCleanFlag

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	report, runErr := run.Run(cmd.Context(), run.Options{
		Paths:       args,
		ExcludeDirs: cfg.ExcludeDirs,
		OutDir:      outDir,
		DryRun:      dryRun,
		Verbose:     verbose,
		NoClean:     noClean,
		Logger:      logger,
	})

	if dryRun {
		printDryRunReport(cmd, report)
	}

	if runErr != nil {
		return runErr
	}
	return nil
}

// printDryRunReport writes a stable, path-sorted table of the targets that
// would be written: path, byte count, contributing block count.
func printDryRunReport(cmd *cobra.Command, report run.Report) {
	targets := append([]run.TargetReport(nil), report.Targets...)
	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })

	out := cmd.OutOrStdout()
	for _, t := range targets {
		fmt.Fprintf(out, "%s\t%d bytes\t%d blocks\n", t.Path, t.Bytes, t.BlockCount)
	}
}
