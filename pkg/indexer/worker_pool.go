package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/scanner"
	"github.com/gnana997/scssclass/pkg/util"
)

// UnitJob represents a stylesheet to be processed by the worker pool.
type UnitJob struct {
	FilePath string
	JobID    int
}

// UnitOutcome contains the extraction result for a stylesheet.
type UnitOutcome struct {
	FilePath string
	JobID    int
	Result   *classname.UnitResult
	CacheHit bool
}

// JobError reports a job that produced no result. Fatal errors (text that is
// not valid UTF-8) fail the whole pass; the rest are read errors and the
// pass goes on without the file.
type JobError struct {
	FilePath string
	JobID    int
	Err      error
	Fatal    bool
}

// unitSource reads stylesheets into source units.
type unitSource interface {
	ReadUnit(absPath string) (classname.SourceUnit, error)
}

// resultCache serves and stores per-unit results by content hash.
type resultCache interface {
	lookup(unitID, hash string) (*classname.UnitResult, bool)
	store(unitID, hash string, result *classname.UnitResult)
}

// WorkerPool manages a pool of goroutines that read and extract stylesheets.
//
// Jobs carry their position in the pass (JobID). Workers finish in any
// order; the caller places outcomes by JobID so the merged result follows
// discovery order.
//
// **Usage:**
//
//	pool := NewWorkerPool(ctx, numWorkers, locator, cache, logger)
//	pool.Start()
//	defer pool.Stop()
//
//	for i, file := range files {
//	    pool.Submit(UnitJob{FilePath: file, JobID: i})
//	}
//	pool.FinishSubmitting()
//
//	// Collect from pool.Results() and pool.Errors()
type WorkerPool struct {
	numWorkers int
	jobs       chan UnitJob
	results    chan UnitOutcome
	errors     chan JobError
	wg         sync.WaitGroup
	source     unitSource
	cache      resultCache
	logger     *slog.Logger

	// Lifecycle management
	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	// Statistics
	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
	cacheHits     atomic.Int64
}

// NewWorkerPool creates a new worker pool bound to ctx. Cancelling ctx
// stops the workers after their current job.
//
// numWorkers of 0 uses util.GetOptimalPoolSize(). cache may be nil.
func NewWorkerPool(ctx context.Context, numWorkers int, source unitSource, cache resultCache, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan UnitJob, numWorkers*2),
		results:    make(chan UnitOutcome, numWorkers),
		errors:     make(chan JobError, numWorkers),
		source:     source,
		cache:      cache,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns all worker goroutines.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("WorkerPool already started")
		return
	}

	wp.logger.Debug("Starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			// Cancellation is checked between units.
			if wp.ctx.Err() != nil {
				return
			}
			wp.processJob(id, job)
		}
	}
}

// processJob reads one stylesheet and extracts it, or takes the cached
// result when the content has not changed.
func (wp *WorkerPool) processJob(workerID int, job UnitJob) {
	unit, err := wp.source.ReadUnit(job.FilePath)
	if err != nil {
		wp.jobsFailed.Add(1)
		wp.sendError(JobError{
			FilePath: job.FilePath,
			JobID:    job.JobID,
			Err:      fmt.Errorf("failed to read file: %w", err),
		})
		return
	}

	hash := ComputeContentHash(unit.Text)
	if wp.cache != nil {
		if cached, ok := wp.cache.lookup(unit.ID, hash); ok {
			wp.cacheHits.Add(1)
			wp.jobsProcessed.Add(1)
			wp.sendResult(UnitOutcome{FilePath: job.FilePath, JobID: job.JobID, Result: cached, CacheHit: true})
			return
		}
	}

	result, err := classname.ExtractUnit(unit)
	if err != nil {
		wp.logger.Debug("Extraction error", "worker_id", workerID, "file", job.FilePath, "error", err)
		wp.jobsFailed.Add(1)
		wp.sendError(JobError{
			FilePath: job.FilePath,
			JobID:    job.JobID,
			Err:      err,
			Fatal:    true,
		})
		return
	}

	if wp.cache != nil {
		wp.cache.store(unit.ID, hash, result)
	}

	wp.jobsProcessed.Add(1)
	wp.sendResult(UnitOutcome{FilePath: job.FilePath, JobID: job.JobID, Result: result})
}

func (wp *WorkerPool) sendResult(outcome UnitOutcome) {
	select {
	case <-wp.ctx.Done():
	case wp.results <- outcome:
	}
}

func (wp *WorkerPool) sendError(jobErr JobError) {
	select {
	case <-wp.ctx.Done():
	case wp.errors <- jobErr:
	}
}

// Submit enqueues a job for processing. It blocks while the queue is full
// and fails once the pool is stopped or cancelled.
func (wp *WorkerPool) Submit(job UnitJob) error {
	if wp.stopped.Load() {
		return fmt.Errorf("worker pool is stopped")
	}

	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool cancelled: %w", wp.ctx.Err())
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the results channel.
func (wp *WorkerPool) Results() <-chan UnitOutcome {
	return wp.results
}

// Errors returns the errors channel.
func (wp *WorkerPool) Errors() <-chan JobError {
	return wp.errors
}

// FinishSubmitting closes the jobs channel so workers exit once the queue
// is drained. Safe to call more than once.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
	}
}

// Stop shuts down the pool: no new jobs are accepted, in-flight jobs are
// abandoned at their next send, and the result and error channels are
// closed. Safe to call more than once.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.cancel()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)

	wp.logger.Debug("Worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load(),
		"cache_hits", wp.cacheHits.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		CacheHits:     wp.cacheHits.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	CacheHits     int64
	QueueLength   int // Current jobs in queue
}

var _ unitSource = (*scanner.Locator)(nil)
