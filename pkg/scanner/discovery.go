package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidatePatterns checks the glob syntax of every include and exclude pattern.
func ValidatePatterns(cfg ScanConfig) error {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

// ResolveRoot returns the absolute workspace root and the absolute
// directory discovery should walk (the root joined with subdirectory).
// The subdirectory must exist, be a directory, and stay inside the root.
func ResolveRoot(root, subdirectory string) (absRoot, scanDir string, err error) {
	if root == "" {
		root = "."
	}
	absRoot, err = filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve root path: %w", err)
	}

	scanDir = absRoot
	if subdirectory != "" {
		if filepath.IsAbs(subdirectory) {
			scanDir = filepath.Clean(subdirectory)
		} else {
			scanDir = filepath.Join(absRoot, subdirectory)
		}
		rel, relErr := filepath.Rel(absRoot, scanDir)
		if relErr != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", "", fmt.Errorf("subdirectory %q is outside root %q", subdirectory, absRoot)
		}
	}

	info, err := os.Stat(scanDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat %q: %w", scanDir, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("%q is not a directory", scanDir)
	}

	return absRoot, scanDir, nil
}

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Patterns match paths relative to rootDir. Returns a sorted slice of
// absolute file paths so passes see units in a reproducible order.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	if err := ValidatePatterns(cfg); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking on errors.
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if relPath != "." && matchesAny(cfg.Exclude, relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if len(cfg.Include) > 0 && !matchesAny(cfg.Include, relPath) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// MatchesFile reports whether relPath (slash-separated, relative to the
// discovery directory) would be picked up by DiscoverFiles. The watcher uses
// it to filter events.
func MatchesFile(cfg ScanConfig, relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	if matchesAny(cfg.Exclude, relPath) {
		return false
	}
	// A file under an excluded directory is excluded too.
	for dir := filepath.ToSlash(filepath.Dir(relPath)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if matchesAny(cfg.Exclude, dir) {
			return false
		}
	}
	return len(cfg.Include) == 0 || matchesAny(cfg.Include, relPath)
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.PathMatch(pattern, relPath); m {
			return true
		}
	}
	return false
}
