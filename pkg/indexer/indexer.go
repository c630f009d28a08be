package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/scanner"
	"github.com/gnana997/scssclass/pkg/util"
)

// ErrNoSnapshot is returned by queries made before any pass has published.
var ErrNoSnapshot = errors.New("class index has no snapshot yet")

// ClassIndex runs extraction passes over a workspace and publishes the
// latest class catalog.
//
// **Architecture:**
//   - Each pass discovers stylesheets, then reads and extracts them on a
//     worker pool, and merges the unit results in discovery order
//   - Per-unit results are kept in an LRU cache and reused while the file
//     content hashes the same
//   - A finished pass is published by swapping one pointer, so readers see
//     either the previous catalog or the new one, never a mix
//   - Starting a pass cancels the pass still in flight; a superseded pass
//     never publishes
//
// **Thread Safety:**
//   - Current() is lock-free
//   - Rescan, SetSubdirectory and Publish may be called concurrently
//
// **Usage:**
//
//	idx, err := NewClassIndex(scanCfg, DefaultClassIndexConfig(), logger)
//	stats, err := idx.Rescan(ctx, nil)
//	qs := idx.Current()
//	entry, ok := qs.GetClass("btn-red-1")
type ClassIndex struct {
	config ClassIndexConfig
	logger *slog.Logger

	// Published snapshot
	snapshot atomic.Pointer[catalog.QueryService]

	// LRU cache: unit ID → CachedUnit
	cache *lru.Cache[string, *CachedUnit]

	// mu guards the pass bookkeeping below
	mu         sync.Mutex
	scanCfg    scanner.ScanConfig
	locator    *scanner.Locator
	reader     *util.MappedReader // shared by every locator, so read counters persist
	passSeq    uint64
	cancelPass context.CancelFunc
	lastErr    error
	lastStats  *ScanStats

	// Statistics (atomic for lock-free reads)
	passes          atomic.Int64
	cancelledPasses atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	evictions       atomic.Int64
}

// NewClassIndex creates an index over the workspace described by scanCfg.
// No pass runs until Rescan is called.
func NewClassIndex(scanCfg scanner.ScanConfig, config ClassIndexConfig, logger *slog.Logger) (*ClassIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultClassIndexConfig().CacheSize
	}

	reader := util.NewMappedReader(logger)
	locator, err := scanner.NewLocatorWithReader(scanCfg, reader, logger)
	if err != nil {
		return nil, err
	}

	ci := &ClassIndex{
		config:  config,
		logger:  logger,
		scanCfg: scanCfg,
		locator: locator,
		reader:  reader,
	}

	cache, err := lru.NewWithEvict(config.CacheSize, func(key string, value *CachedUnit) {
		ci.evictions.Add(1)
		if config.Debug {
			logger.Debug("LRU evicting unit", "unit", key, "classes", len(value.Result.Admitted))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create unit cache: %w", err)
	}
	ci.cache = cache

	logger.Debug("ClassIndex initialized",
		"root", locator.Root(),
		"scan_dir", locator.ScanDir(),
		"cache_size", config.CacheSize)
	return ci, nil
}

// Current returns the published snapshot, or nil before the first pass.
func (ci *ClassIndex) Current() *catalog.QueryService {
	return ci.snapshot.Load()
}

// Query returns the published snapshot or ErrNoSnapshot.
func (ci *ClassIndex) Query() (*catalog.QueryService, error) {
	qs := ci.snapshot.Load()
	if qs == nil {
		return nil, ErrNoSnapshot
	}
	return qs, nil
}

// Locator returns the locator used by the next pass.
func (ci *ClassIndex) Locator() *scanner.Locator {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.locator
}

// SetSubdirectory changes the discovery restriction for later passes. It
// cancels the pass in flight, since its result would describe the old
// scope.
func (ci *ClassIndex) SetSubdirectory(subdirectory string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	cfg := ci.scanCfg
	cfg.Subdirectory = subdirectory
	locator, err := scanner.NewLocatorWithReader(cfg, ci.reader, ci.logger)
	if err != nil {
		return err
	}

	ci.scanCfg = cfg
	ci.locator = locator
	if ci.cancelPass != nil {
		ci.cancelPass()
	}
	ci.logger.Info("Discovery scope changed", "subdirectory", subdirectory, "scan_dir", locator.ScanDir())
	return nil
}

// Publish installs cat as the current snapshot. It is used to serve a
// catalog loaded from disk. cat must already be validated.
func (ci *ClassIndex) Publish(cat *catalog.Catalog) {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	ci.snapshot.Store(catalog.NewQueryService(cat, cat.BuildIndex()))
	ci.logger.Info("Catalog published", "pass_id", cat.PassID, "classes", len(cat.Classes))
}

// Rescan runs a full pass and publishes its catalog.
//
// Any pass still in flight is cancelled first. If this pass is itself
// cancelled, through ctx or by a newer pass, it returns an error wrapping
// classname.ErrPassCancelled and the published snapshot is left as it was.
// Unreadable files are recorded in the returned stats and skipped.
func (ci *ClassIndex) Rescan(ctx context.Context, progress ProgressCallback) (*ScanStats, error) {
	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ci.mu.Lock()
	if ci.cancelPass != nil {
		ci.cancelPass()
	}
	ci.passSeq++
	seq := ci.passSeq
	ci.cancelPass = cancel
	locator := ci.locator
	scanCfg := ci.scanCfg
	ci.mu.Unlock()

	defer func() {
		ci.mu.Lock()
		if ci.passSeq == seq {
			ci.cancelPass = nil
		}
		ci.mu.Unlock()
	}()

	stats, cat, err := ci.runPass(passCtx, locator, scanCfg, progress)
	if err != nil {
		if errors.Is(err, classname.ErrPassCancelled) {
			ci.cancelledPasses.Add(1)
		}
		ci.setLastError(seq, err)
		return stats, err
	}

	ci.mu.Lock()
	if ci.passSeq != seq {
		ci.mu.Unlock()
		ci.cancelledPasses.Add(1)
		return stats, fmt.Errorf("%w: superseded by a newer pass", classname.ErrPassCancelled)
	}
	ci.snapshot.Store(catalog.NewQueryService(cat, cat.BuildIndex()))
	ci.lastErr = nil
	ci.lastStats = stats
	ci.mu.Unlock()

	ci.passes.Add(1)
	ci.logger.Info("Class index updated",
		"pass_id", stats.PassID,
		"units", stats.UnitsExtracted,
		"from_cache", stats.UnitsFromCache,
		"failed", stats.FilesFailed,
		"classes", stats.Classes,
		"duration_ms", stats.TotalTimeMs)

	return stats, nil
}

func (ci *ClassIndex) setLastError(seq uint64, err error) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	if ci.passSeq == seq {
		ci.lastErr = err
	}
}

// runPass discovers, extracts and merges one pass. It does not publish.
func (ci *ClassIndex) runPass(
	ctx context.Context,
	locator *scanner.Locator,
	scanCfg scanner.ScanConfig,
	progress ProgressCallback,
) (*ScanStats, *catalog.Catalog, error) {
	startTime := time.Now()
	stats := &ScanStats{
		PassID:    uuid.NewString(),
		StartTime: startTime,
	}

	discoveryStart := time.Now()
	files, err := locator.Discover()
	if err != nil {
		return stats, nil, err
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()

	ci.logger.Debug("Pass started", "pass_id", stats.PassID, "files", len(files))

	extractionStart := time.Now()
	results, err := ci.processUnits(ctx, locator, files, stats, progress)
	if err != nil {
		return stats, nil, err
	}
	stats.ExtractionTimeMs = time.Since(extractionStart).Milliseconds()

	rs := classname.NewResultSet()
	classname.Merge(rs, results...)

	meta := catalog.Meta{
		PassID:       stats.PassID,
		Root:         locator.Root(),
		Subdirectory: scanCfg.Subdirectory,
		GeneratedAt:  time.Now().UTC(),
	}
	cat := catalog.FromResults(meta, rs, results)

	stats.Classes = rs.Len()
	stats.EndTime = time.Now()
	stats.TotalTimeMs = time.Since(startTime).Milliseconds()
	return stats, cat, nil
}

// processUnits runs every file through the worker pool and returns the
// unit results in file order, without the files that could not be read.
func (ci *ClassIndex) processUnits(
	ctx context.Context,
	locator *scanner.Locator,
	files []string,
	stats *ScanStats,
	progress ProgressCallback,
) ([]*classname.UnitResult, error) {
	total := len(files)
	ordered := make([]*classname.UnitResult, total)
	if total == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", classname.ErrPassCancelled, err)
		}
		return nil, nil
	}

	// A fatal unit error stops the collector and the workers together.
	collectCtx, stopCollect := context.WithCancel(ctx)
	defer stopCollect()

	pool := NewWorkerPool(collectCtx, ci.config.Workers, locator, ci, ci.logger)
	stats.WorkerCount = pool.numWorkers
	pool.Start()
	defer pool.Stop()

	// Start the collector before submitting, or a full jobs queue would
	// block submission with nobody draining results.
	var fatal error
	done := make(chan struct{})
	go func() {
		defer close(done)
		finished := 0
		for finished < total {
			select {
			case <-collectCtx.Done():
				return

			case outcome := <-pool.Results():
				ordered[outcome.JobID] = outcome.Result
				stats.UnitsExtracted++
				if outcome.CacheHit {
					stats.UnitsFromCache++
				}
				finished++
				if progress != nil {
					progress(finished, total, outcome.FilePath)
				}

			case jobErr := <-pool.Errors():
				if jobErr.Fatal {
					fatal = jobErr.Err
					stopCollect()
					return
				}
				ci.logger.Warn("Skipping unreadable stylesheet", "file", jobErr.FilePath, "error", jobErr.Err)
				stats.Errors = append(stats.Errors, scanner.FileError{FilePath: jobErr.FilePath, Err: jobErr.Err})
				stats.FilesFailed++
				finished++
				if progress != nil {
					progress(finished, total, jobErr.FilePath)
				}
			}
		}
	}()

	for i, file := range files {
		if err := pool.Submit(UnitJob{FilePath: file, JobID: i}); err != nil {
			break
		}
	}
	pool.FinishSubmitting()
	<-done

	if fatal != nil {
		return nil, fatal
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", classname.ErrPassCancelled, err)
	}

	results := make([]*classname.UnitResult, 0, total)
	for _, r := range ordered {
		if r != nil {
			results = append(results, r)
		}
	}
	return results, nil
}

// lookup returns the cached result for unitID when it was computed from
// content with the same hash.
func (ci *ClassIndex) lookup(unitID, hash string) (*classname.UnitResult, bool) {
	entry, ok := ci.cache.Get(unitID)
	if !ok || entry.ContentHash != hash {
		ci.cacheMisses.Add(1)
		return nil, false
	}
	ci.cacheHits.Add(1)
	return entry.Result, true
}

func (ci *ClassIndex) store(unitID, hash string, result *classname.UnitResult) {
	ci.cache.Add(unitID, &CachedUnit{
		UnitID:      unitID,
		ContentHash: hash,
		Result:      result,
		Timestamp:   time.Now().UnixMilli(),
	})
}

// InvalidateUnit drops the cached result for one unit.
func (ci *ClassIndex) InvalidateUnit(unitID string) {
	ci.cache.Remove(unitID)
}

// LastScan returns the stats of the last published pass, or nil.
func (ci *ClassIndex) LastScan() *ScanStats {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.lastStats
}

// GetStats returns current index statistics.
func (ci *ClassIndex) GetStats() IndexStats {
	ci.mu.Lock()
	lastErr := ci.lastErr
	subdirectory := ci.scanCfg.Subdirectory
	ci.mu.Unlock()

	stats := IndexStats{
		Passes:          ci.passes.Load(),
		CancelledPasses: ci.cancelledPasses.Load(),
		CachedUnits:     ci.cache.Len(),
		CacheHits:       ci.cacheHits.Load(),
		CacheMisses:     ci.cacheMisses.Load(),
		Evictions:       ci.evictions.Load(),
		BytesRead:       ci.reader.Stats().BytesRead,
		Subdirectory:    subdirectory,
	}
	if total := stats.CacheHits + stats.CacheMisses; total > 0 {
		stats.CacheHitRate = float64(stats.CacheHits) / float64(total)
	}
	if lastErr != nil {
		stats.LastError = lastErr.Error()
	}
	if qs := ci.snapshot.Load(); qs != nil {
		stats.PassID = qs.Catalog.PassID
		stats.Classes = len(qs.Catalog.Classes)
		stats.Units = len(qs.Catalog.Sources)
	}
	return stats
}

// Close cancels any pass in flight and drops the cache. The published
// snapshot stays readable.
func (ci *ClassIndex) Close() {
	ci.mu.Lock()
	if ci.cancelPass != nil {
		ci.cancelPass()
		ci.cancelPass = nil
	}
	ci.mu.Unlock()

	ci.cache.Purge()
	ci.logger.Debug("ClassIndex closed")
}

// ComputeContentHash computes the SHA-256 hash of stylesheet text.
func ComputeContentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
