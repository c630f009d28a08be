package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/util"
)

// Locator finds stylesheets on disk and turns them into source units.
//
// Unit IDs are slash-separated paths relative to the workspace root, so the
// same workspace yields the same IDs wherever it is checked out.
type Locator struct {
	cfg     ScanConfig
	root    string
	scanDir string
	reader  *util.MappedReader
	logger  *slog.Logger
}

// NewLocator validates cfg and resolves its root and subdirectory.
func NewLocator(cfg ScanConfig, logger *slog.Logger) (*Locator, error) {
	return NewLocatorWithReader(cfg, nil, logger)
}

// NewLocatorWithReader is NewLocator reading through reader, so read
// counters survive a change of locator. A nil reader creates a new one.
func NewLocatorWithReader(cfg ScanConfig, reader *util.MappedReader, logger *slog.Logger) (*Locator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = util.NewMappedReader(logger)
	}
	if err := ValidatePatterns(cfg); err != nil {
		return nil, err
	}
	root, scanDir, err := ResolveRoot(cfg.Root, cfg.Subdirectory)
	if err != nil {
		return nil, err
	}
	return &Locator{
		cfg:     cfg,
		root:    root,
		scanDir: scanDir,
		reader:  reader,
		logger:  logger,
	}, nil
}

// Root returns the absolute workspace root.
func (l *Locator) Root() string { return l.root }

// ScanDir returns the absolute directory being walked.
func (l *Locator) ScanDir() string { return l.scanDir }

// Reader exposes the underlying file reader for stats.
func (l *Locator) Reader() *util.MappedReader { return l.reader }

// Discover returns the absolute paths of all matching stylesheets, sorted.
func (l *Locator) Discover() ([]string, error) {
	files, err := DiscoverFiles(l.scanDir, l.cfg)
	if err != nil {
		return nil, fmt.Errorf("stylesheet discovery failed: %w", err)
	}
	l.logger.Debug("stylesheets discovered", "dir", l.scanDir, "files", len(files))
	return files, nil
}

// Matches reports whether an absolute path is a stylesheet this locator
// would discover.
func (l *Locator) Matches(absPath string) bool {
	rel, err := filepath.Rel(l.scanDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return MatchesFile(l.cfg, rel)
}

// SkipsDir reports whether an absolute directory matches an exclude
// pattern, relative to the workspace root. The watcher uses it to avoid
// registering watches on dependency and build trees.
func (l *Locator) SkipsDir(absDir string) bool {
	rel, err := filepath.Rel(l.root, absDir)
	if err != nil || rel == "." {
		return false
	}
	return matchesAny(l.cfg.Exclude, filepath.ToSlash(rel))
}

// UnitID converts an absolute path to the unit identifier.
func (l *Locator) UnitID(absPath string) string {
	rel, err := filepath.Rel(l.root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// ReadUnit reads one stylesheet into a source unit.
func (l *Locator) ReadUnit(absPath string) (classname.SourceUnit, error) {
	text, err := l.reader.ReadString(absPath)
	if err != nil {
		return classname.SourceUnit{}, err
	}
	return classname.SourceUnit{ID: l.UnitID(absPath), Text: text}, nil
}

// Load discovers and reads every stylesheet in order. Unreadable files are
// returned as FileErrors and left out of the units; only discovery failure
// or cancellation is an error.
func (l *Locator) Load(ctx context.Context) ([]classname.SourceUnit, []FileError, error) {
	files, err := l.Discover()
	if err != nil {
		return nil, nil, err
	}

	units := make([]classname.SourceUnit, 0, len(files))
	var skipped []FileError
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		unit, err := l.ReadUnit(path)
		if err != nil {
			l.logger.Warn("skipping unreadable stylesheet", "file", path, "error", err)
			skipped = append(skipped, FileError{FilePath: path, Err: err})
			continue
		}
		units = append(units, unit)
	}
	return units, skipped, nil
}
