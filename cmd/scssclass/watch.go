package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/indexer"
)

// runWatch is the entry point for `scssclass watch`. It keeps the catalog
// file in step with the workspace until interrupted.
func runWatch(args []string, stdout, stderr io.Writer) error {
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
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	idx, err := indexer.NewClassIndex(s.scan, s.index, logger)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writeCatalog := func(stats *indexer.ScanStats) {
		if err := idx.Current().Catalog.WriteFile(output); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintf(stdout, "%s  %d classes from %d stylesheets (%d cached) in %dms\n",
			stats.PassID, stats.Classes, stats.UnitsExtracted, stats.UnitsFromCache, stats.TotalTimeMs)
	}

	stats, err := idx.Rescan(ctx, nil)
	if err != nil {
		return err
	}
	writeCatalog(stats)

	watcher, err := indexer.NewFileWatcher(idx, s.watch, logger)
	if err != nil {
		return err
	}
	watcher.OnPass(func(stats *indexer.ScanStats, err error) {
		switch {
		case errors.Is(err, classname.ErrPassCancelled):
			// A newer pass is already running.
		case err != nil:
			fmt.Fprintf(stderr, "error: %v\n", err)
		default:
			writeCatalog(stats)
		}
	})
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(stdout, "Watching %s (writing %s); press Ctrl+C to stop\n", idx.Locator().Root(), output)
	<-ctx.Done()
	return nil
}
