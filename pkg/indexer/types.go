package indexer

import (
	"time"

	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/scanner"
)

// CachedUnit is the extraction result of one stylesheet, kept between
// passes. It is reused as long as the file content hashes the same.
type CachedUnit struct {
	// UnitID is the workspace-relative unit identifier
	UnitID string

	// ContentHash is the SHA-256 of the text the result was computed from
	ContentHash string

	// Result is the per-unit extraction output
	Result *classname.UnitResult

	// Timestamp when the unit was extracted (Unix milliseconds)
	Timestamp int64
}

// ClassIndexConfig configures the class index.
type ClassIndexConfig struct {
	// CacheSize is the maximum number of units kept in the LRU cache.
	// Default: 2048 units
	CacheSize int

	// Workers is the number of goroutines reading and extracting units.
	// 0 = util.GetOptimalPoolSize()
	Workers int

	// Debug enables verbose logging
	Debug bool
}

// DefaultClassIndexConfig returns the default configuration.
func DefaultClassIndexConfig() ClassIndexConfig {
	return ClassIndexConfig{
		CacheSize: 2048,
		Workers:   0,
		Debug:     false,
	}
}

// IndexStats provides statistics about the index state.
type IndexStats struct {
	// PassID identifies the published snapshot ("" before the first pass)
	PassID string `json:"pass_id"`

	// Classes is the number of classes in the published snapshot
	Classes int `json:"classes"`

	// Units is the number of units in the published snapshot
	Units int `json:"units"`

	// Passes is the number of passes that published a snapshot
	Passes int64 `json:"passes"`

	// CancelledPasses counts passes superseded or cancelled before publishing
	CancelledPasses int64 `json:"cancelled_passes"`

	// CachedUnits is the number of units currently in the LRU cache
	CachedUnits int `json:"cached_units"`

	// CacheHits is the number of units served from the cache
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses is the number of units that had to be extracted
	CacheMisses int64 `json:"cache_misses"`

	// CacheHitRate is the share of cache hits (0.0 - 1.0)
	CacheHitRate float64 `json:"cache_hit_rate"`

	// Evictions is the number of LRU evictions that have occurred
	Evictions int64 `json:"evictions"`

	// BytesRead is the total stylesheet bytes read from disk
	BytesRead int64 `json:"bytes_read"`

	// Subdirectory is the discovery restriction in effect
	Subdirectory string `json:"subdirectory,omitempty"`

	// LastError is the error of the most recent failed pass, if any
	LastError string `json:"last_error,omitempty"`
}

// ScanStats contains statistics about one extraction pass.
type ScanStats struct {
	// PassID identifies the pass
	PassID string

	// FilesDiscovered is the total number of stylesheets found
	FilesDiscovered int

	// UnitsExtracted is the number of units that took part in the pass
	UnitsExtracted int

	// UnitsFromCache is how many of those were served by the cache
	UnitsFromCache int

	// FilesFailed is the number of unreadable stylesheets
	FilesFailed int

	// Classes is the number of admitted class names
	Classes int

	// WorkerCount is the number of workers used
	WorkerCount int

	// TotalTimeMs is the total pass duration in milliseconds
	TotalTimeMs int64

	// DiscoveryTimeMs is time spent discovering files
	DiscoveryTimeMs int64

	// ExtractionTimeMs is time spent reading and extracting units
	ExtractionTimeMs int64

	// Errors contains per-file read errors (if any)
	Errors []scanner.FileError

	// StartTime is when the pass started
	StartTime time.Time

	// EndTime is when the pass completed
	EndTime time.Time
}

// ProgressCallback is called after each unit of a pass completes.
//
// Parameters:
//   - done: Number of units finished so far
//   - total: Total number of units in the pass
//   - currentFile: Path of the unit that just finished
type ProgressCallback func(done, total int, currentFile string)

// WatchOptions configures file watching behavior.
type WatchOptions struct {
	// DebounceMs is the quiet period before a rescan starts.
	// Multiple rapid changes are grouped into a single pass.
	// Default: 200ms
	DebounceMs int

	// IgnorePatterns are base-name globs for editor and temp files
	IgnorePatterns []string
}

// DefaultWatchOptions returns recommended watch options.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		DebounceMs: 200,
		IgnorePatterns: []string{
			"*.swp",
			"*.tmp",
			"*~",
			".#*",
		},
	}
}
