package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/mcp"
	"github.com/gnana997/scssclass/pkg/mcplog"
	"github.com/gnana997/scssclass/pkg/parser"
	"github.com/gnana997/scssclass/pkg/validator"
)

// runServe is the entry point for `scssclass serve`. Stdout carries the
// MCP protocol, so everything else goes to stderr.
func runServe(args []string, stderr io.Writer) error {
	f, err := parseFlags(args, boolFlags("no-watch")...)
	if err != nil {
		return err
	}
	s, err := resolveSettings(f, ".")
	if err != nil {
		return err
	}
	logger := s.logger()

	idx, err := indexer.NewClassIndex(s.scan, s.index, logger)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, fromFile := f.String("catalog")
	if fromFile {
		cat, _, err := catalog.LoadFromFile(s.catalogPath)
		if err != nil {
			return err
		}
		idx.Publish(cat)
	} else {
		initialScan(ctx, idx, logger, stderr)
		if !f.Bool("no-watch") {
			watcher, err := indexer.NewFileWatcher(idx, s.watch, logger)
			if err != nil {
				return err
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()
		}
	}

	var callLog *mcplog.Logger
	if s.mcpLog != "" {
		callLog, err = mcplog.NewLogger(s.mcpLog)
		if err != nil {
			return err
		}
		defer callLog.Close()
	}

	pm := parser.NewParserManager(logger)
	defer pm.Close()

	srv := mcp.NewServer(idx, mcp.Options{
		Validator: validator.NewValidator(idx, pm, logger),
		CallLog:   callLog,
		Logger:    logger,
		ReadOnly:  fromFile,
	})

	logger.Info("Serving MCP on stdio", "root", idx.Locator().Root(), "read_only", fromFile)
	return srv.ServeStdio()
}

// initialScan runs the first pass before serving. A failed pass publishes
// nothing, so class tools error until a later rescan succeeds.
func initialScan(ctx context.Context, idx *indexer.ClassIndex, logger *slog.Logger, stderr io.Writer) bool {
	if rescanOnce(ctx, idx, logger) != nil {
		return true
	}
	fmt.Fprintln(stderr, "warning: initial scan failed; class tools report no catalog until a rescan succeeds")
	return false
}
