package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/parser"
	"github.com/gnana997/scssclass/pkg/validator"
)

// markupPattern selects the files linted when a directory is given.
const markupPattern = "**/*.{tsx,jsx}"

// lintReport is the JSON form of `scssclass lint`.
type lintReport struct {
	PassID   string                        `json:"pass_id"`
	Files    int                           `json:"files"`
	Errors   int                           `json:"errors"`
	Warnings int                           `json:"warnings"`
	Fixed    int                           `json:"fixed"`
	Results  []*validator.ValidationResult `json:"results"`
}

// runLint is the entry point for `scssclass lint <files...>`.
func runLint(args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, boolFlags("fix", "json")...)
	if err != nil {
		return err
	}
	if len(f.Args()) == 0 {
		return errors.New("usage: scssclass lint <file|dir|glob>... [--fix] [--json] [--catalog path]")
	}
	s, err := resolveSettings(f, ".")
	if err != nil {
		return err
	}
	logger := s.logger()

	files, err := expandLintTargets(f.Args())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no TSX or JSX files matched")
	}

	_, explicitCatalog := f.String("catalog")
	source, cleanup, err := lintCatalog(s, explicitCatalog, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	pm := parser.NewParserManager(logger)
	defer pm.Close()
	v := validator.NewValidator(source, pm, logger)

	report := lintReport{
		PassID:  source.Current().Catalog.PassID,
		Files:   len(files),
		Results: make([]*validator.ValidationResult, 0, len(files)),
	}
	for _, path := range files {
		result, err := v.ValidateFile(path, f.Bool("fix"))
		if err != nil {
			return err
		}
		report.Results = append(report.Results, result)

		if result.FixedCode != "" {
			if err := os.WriteFile(path, []byte(result.FixedCode), 0644); err != nil {
				return fmt.Errorf("write fixes to %s: %w", path, err)
			}
		}
		report.tally(result)
	}

	if f.Bool("json") {
		if err := writeJSON(stdout, report); err != nil {
			return err
		}
	} else {
		printLintHuman(stdout, &report, f.Bool("quiet"))
	}

	if report.Errors > 0 {
		return errViolations
	}
	return nil
}

// lintCatalog picks the catalog to check against: an explicit --catalog,
// else the configured catalog file when it exists, else a fresh scan.
func lintCatalog(s *settings, explicit bool, logger *slog.Logger) (validator.CatalogSource, func(), error) {
	if _, err := os.Stat(s.catalogPath); explicit || err == nil {
		qs, err := catalog.LoadAndQuery(s.catalogPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("linting against catalog file", "path", s.catalogPath, "classes", qs.Len())
		return validator.StaticCatalog{Query: qs}, func() {}, nil
	}

	idx, err := indexer.NewClassIndex(s.scan, s.index, logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := idx.Rescan(context.Background(), nil); err != nil {
		idx.Close()
		return nil, nil, err
	}
	return idx, idx.Close, nil
}

// expandLintTargets turns file, directory and glob arguments into a
// sorted, de-duplicated list of files.
func expandLintTargets(targets []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, target := range targets {
		if info, err := os.Stat(target); err == nil {
			if !info.IsDir() {
				add(target)
				continue
			}
			matches, err := doublestar.FilepathGlob(filepath.Join(target, markupPattern))
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if !inDependencyTree(m) {
					add(m)
				}
			}
			continue
		}

		if !doublestar.ValidatePathPattern(target) {
			return nil, fmt.Errorf("invalid pattern: %s", target)
		}
		matches, err := doublestar.FilepathGlob(target)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no such file", target)
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(files)
	return files, nil
}

func inDependencyTree(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "node_modules" || part == ".git" {
			return true
		}
	}
	return false
}

// tally counts the violations of one file. A violation counts as fixed only
// when its fix was applied.
func (r *lintReport) tally(result *validator.ValidationResult) {
	for _, vi := range result.Violations {
		switch {
		case vi.Fixed:
			r.Fixed++
		case vi.Severity == "error":
			r.Errors++
		default:
			r.Warnings++
		}
	}
}

func printLintHuman(w io.Writer, r *lintReport, quiet bool) {
	for _, res := range r.Results {
		for _, vi := range res.Violations {
			if quiet && vi.Severity != "error" {
				continue
			}
			fmt.Fprintf(w, "%s:%d:%d: %s: %s (%s)\n", res.FilePath, vi.Line, vi.Column, vi.Severity, vi.Message, vi.Rule)
		}
	}
	if r.Fixed > 0 {
		fmt.Fprintf(w, "Fixed %d class name(s)\n", r.Fixed)
	}
	fmt.Fprintf(w, "%d file(s) checked: %d error(s), %d warning(s)\n", r.Files, r.Errors, r.Warnings)
}
