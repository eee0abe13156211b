// Package run orchestrates the tangler pipeline: discover documents, scan
// them concurrently, build the reference index, assemble targets, write
// output, and run the optional cache-cleanup pass. It is the thin seam cmd/
// calls into, kept separate so it can be exercised without a real terminal;
// it reads and writes the real filesystem through its *Impl helpers.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eykd/tangle/internal/tangle/assemble"
	"github.com/eykd/tangle/internal/tangle/cleanup"
	"github.com/eykd/tangle/internal/tangle/config"
	"github.com/eykd/tangle/internal/tangle/diag"
	"github.com/eykd/tangle/internal/tangle/discover"
	"github.com/eykd/tangle/internal/tangle/expand"
	"github.com/eykd/tangle/internal/tangle/index"
	"github.com/eykd/tangle/internal/tangle/model"
	"github.com/eykd/tangle/internal/tangle/scan"
)

// ErrNoDocuments is returned when no document paths were given and none
// could be discovered.
var ErrNoDocuments = errors.New("no input documents discovered")

// maxConcurrentScans bounds the document-scanning worker pool: scanning is
// parallelized across documents since blocks from distinct documents are
// independent.
const maxConcurrentScans = 8

// Options configures one pipeline run.
type Options struct {
	// Paths are the document paths to tangle. If empty, Documents under "."
	// are discovered automatically.
	Paths       []string
	ExcludeDirs []string
	OutDir      string
	DryRun      bool
	Verbose     bool
	NoClean     bool
	Logger      *slog.Logger
}

// TargetReport summarizes one assembled (or, under --dry-run, planned)
// target.
type TargetReport struct {
	Path       string
	Bytes      int
	BlockCount int
}

// Report is the outcome of a pipeline run.
type Report struct {
	RunID   string
	Targets []TargetReport
}

// Run executes the full pipeline per opts.
func Run(ctx context.Context, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()

	paths, err := resolvePaths(opts)
	if err != nil {
		return Report{}, err
	}
	if len(paths) == 0 {
		return Report{}, ErrNoDocuments
	}

	blocks, scanErr := scanAll(ctx, paths, opts.Verbose, runID, logger)
	if scanErr != nil {
		return Report{}, scanErr
	}

	idx := index.Build(blocks)
	targets := assemble.BuildTargets(blocks)
	assembler := assemble.New(expand.New(idx))

	report := Report{RunID: runID}
	var writeErr error

	for _, t := range targets {
		res := assembler.Assemble(t)
		for _, d := range res.Diagnostics {
			logDiagnostic(logger, d)
		}
		report.Targets = append(report.Targets, TargetReport{
			Path:       t.OutputPath,
			Bytes:      len(res.Bytes),
			BlockCount: len(t.Blocks),
		})

		if opts.DryRun {
			continue
		}
		if err := writeTargetImpl(t.OutputPath, res.Bytes); err != nil {
			logger.Error("writing target", "path", t.OutputPath, "error", err)
			writeErr = fmt.Errorf("writing %s: %w", t.OutputPath, err)
			continue
		}
		if opts.Verbose {
			logger.Info("wrote target", "path", t.OutputPath, "bytes", len(res.Bytes), "blocks", len(t.Blocks))
		}
	}

	if !opts.DryRun && !opts.NoClean {
		outDir := opts.OutDir
		if outDir == "" {
			outDir = config.DefaultOutDir
		}
		if _, _, cleanErr := cleanup.RunImpl(outDir); cleanErr != nil {
			logger.Warn("cache cleanup failed", "error", cleanErr, "code", diag.CodeCleanupFailure)
		}
	}

	return report, writeErr
}

// resolvePaths returns opts.Paths unchanged if non-empty, otherwise
// discovers documents under the current directory.
func resolvePaths(opts Options) ([]string, error) {
	if len(opts.Paths) > 0 {
		return opts.Paths, nil
	}
	paths, err := discover.Documents(".", opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("discovering documents: %w", err)
	}
	return paths, nil
}

// scanOutcome is the per-document result of the concurrent scan fan-out.
type scanOutcome struct {
	blocks []*model.Block
	diags  []diag.Diagnostic
	err    error
}

// scanAll reads and scans each document in paths concurrently (at most
// maxConcurrentScans at a time), and returns the combined block list in deterministic order: document-list
// order, then intra-document discovery order. A document that fails to read
// is logged and skipped; it is not a fatal error for the run.
func scanAll(ctx context.Context, paths []string, verbose bool, runID string, logger *slog.Logger) ([]*model.Block, error) {
	outcomes := make([]scanOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScans)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := readDocumentImpl(p)
			if err != nil {
				outcomes[i] = scanOutcome{err: err}
				logger.Error("reading document", "path", p, "error", err, "code", diag.CodeSourceReadFailure)
				return nil
			}
			props := scan.ExtractProperties(text)
			blks, diags := scan.Scan(text, props, p)
			outcomes[i] = scanOutcome{blocks: blks, diags: diags}
			if verbose {
				logger.Info("scanned document", "path", p, "blocks", len(blks), "run", runID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*model.Block
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		all = append(all, o.blocks...)
		for _, d := range o.diags {
			logDiagnostic(logger, d)
		}
	}
	return all, nil
}

// readDocumentImpl reads path's contents as a string. Excluded from
// coverage because it wraps OS calls.
func readDocumentImpl(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeTargetImpl creates parent directories as needed and writes data to
// path. Excluded from coverage because it wraps OS calls.
func writeTargetImpl(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// logDiagnostic logs d at a level matching its severity.
func logDiagnostic(logger *slog.Logger, d diag.Diagnostic) {
	attrs := []any{"code", d.Code, "path", d.Path}
	if d.Line > 0 {
		attrs = append(attrs, "line", d.Line)
	}
	if d.Severity == "error" {
		logger.Error(d.Message, attrs...)
		return
	}
	logger.Warn(d.Message, attrs...)
}
