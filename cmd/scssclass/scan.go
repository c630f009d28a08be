package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/gnana997/scssclass/pkg/indexer"
)

// runScan is the entry point for `scssclass scan`.
func runScan(args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, boolFlags()...)
	if err != nil {
		return err
	}
	s, err := resolveSettings(f, ".")
	if err != nil {
		return err
	}
	logger := s.logger()

	output := s.catalogPath
	if o, ok := f.String("output"); ok {
		output = o
	}

	idx, err := indexer.NewClassIndex(s.scan, s.index, logger)
	if err != nil {
		return err
	}
	defer idx.Close()

	var progress indexer.ProgressCallback
	if !f.Bool("quiet") && output != "-" {
		progress = newScanProgress(stderr)
	}

	stats, err := idx.Rescan(context.Background(), progress)
	if err != nil {
		return err
	}
	for _, fe := range stats.Errors {
		fmt.Fprintf(stderr, "warning: skipped %v\n", fe)
	}

	cat := idx.Current().Catalog
	if output == "-" {
		return writeJSON(stdout, cat)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := cat.WriteFile(output); err != nil {
		return err
	}

	printScanSummary(stdout, stats, output)
	logger.Debug("scan finished", "pass_id", stats.PassID, "output", output)
	return nil
}

// rescanOnce runs a pass and logs its outcome. Failures keep the previous
// catalog, so they are reported rather than returned.
func rescanOnce(ctx context.Context, idx *indexer.ClassIndex, logger *slog.Logger) *indexer.ScanStats {
	stats, err := idx.Rescan(ctx, nil)
	if err != nil {
		logger.Error("extraction pass failed", "error", err)
		return nil
	}
	for _, fe := range stats.Errors {
		logger.Warn("skipped unreadable stylesheet", "file", fe.FilePath, "error", fe.Err)
	}
	return stats
}

// newScanProgress returns a ProgressCallback drawing a progress bar. The
// bar is created on the first callback, once the unit count is known.
func newScanProgress(w io.Writer) indexer.ProgressCallback {
	var bar *progressbar.ProgressBar
	return func(done, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Extracting classes"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}
		_ = bar.Set(done)
	}
}

func printScanSummary(w io.Writer, stats *indexer.ScanStats, output string) {
	fmt.Fprintf(w, "Scanned %d stylesheets (%d from cache, %d unreadable) in %dms\n",
		stats.UnitsExtracted, stats.UnitsFromCache, stats.FilesFailed, stats.TotalTimeMs)
	fmt.Fprintf(w, "%d classes, pass %s\n", stats.Classes, stats.PassID)
	fmt.Fprintf(w, "Catalog written to %s\n", output)
}
