// Package scanner is the concurrent traversal engine. A pool of workers
// consumes directory paths from a shared queue, fingerprints files, and
// emits records through a single-writer sink into the catalog. The run
// terminates when every worker has independently observed an empty queue
// for the idle timeout, after which the writer drains and stops.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

// Defaults for the knobs a caller usually leaves alone.
const (
	DefaultIdleTimeout   = 60 * time.Second
	DefaultFlushInterval = time.Second
	DefaultSinkSize      = 1000
)

// Config carries the startup inputs of a run.
type Config struct {
	Roots         []string      // Seed directories, resolved to absolute form
	Workers       int           // Pool size; 0 means 2x NumCPU
	Ignore        []string      // Glob patterns for directory names to skip
	QueueSize     int           // Work queue capacity; 0 means unbounded
	SinkSize      int           // Sink capacity; 0 means DefaultSinkSize
	IdleTimeout   time.Duration // Worker exit after this long with no work
	FlushInterval time.Duration // Writer's periodic commit interval
}

// Summary reports what a completed run did.
type Summary struct {
	RunID       string
	Duration    time.Duration
	DirsScanned int64
	DirsResumed int64
	FilesHashed int64
	BytesHashed int64
	Symlinks    int64
	Failures    int64
}

// Engine wires the queue, the worker pool, and the writer together.
type Engine struct {
	cfg     Config
	ignore  domain.IgnoreSet
	catalog ports.Catalog
	fsys    ports.FileSystem
	fp      ports.Fingerprinter
	log     *slog.Logger

	stats Stats
	queue *Queue
	sink  *Sink
}

// New validates cfg and builds an engine. A nil logger falls back to
// slog.Default.
func New(cfg Config, catalog ports.Catalog, fsys ports.FileSystem, fp ports.Fingerprinter, log *slog.Logger) (*Engine, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("at least one root path is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2 * runtime.NumCPU()
	}
	if cfg.SinkSize <= 0 {
		cfg.SinkSize = DefaultSinkSize
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	ignore, err := domain.NewIgnoreSet(cfg.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		ignore:  ignore,
		catalog: catalog,
		fsys:    fsys,
		fp:      fp,
		log:     log,
		queue:   NewQueue(cfg.QueueSize),
		sink:    NewSink(cfg.SinkSize),
	}, nil
}

// Run executes one scan to quiescence. It loads the resume index, seeds the
// roots, runs the pool plus the writer, and records a run summary once the
// writer has stopped. The returned error is the writer's store failure if
// one occurred, otherwise the context's error if the run was canceled.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	done, err := e.catalog.DoneDirs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load resume index: %w", err)
	}
	e.log.Info("resume index loaded", "done_dirs", len(done))

	defer e.queue.Close()

	for _, root := range e.cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return Summary{}, fmt.Errorf("resolve root %s: %w", root, err)
		}
		if err := e.queue.Enqueue(ctx, abs); err != nil {
			return Summary{}, err
		}
	}

	wr := &writer{
		catalog: e.catalog,
		sink:    e.sink,
		flush:   e.cfg.FlushInterval,
		stats:   &e.stats,
		log:     e.log,
	}
	writerErr := make(chan error, 1)
	go func() { writerErr <- wr.run() }()

	var g errgroup.Group
	for i := 0; i < e.cfg.Workers; i++ {
		wk := &worker{
			id:     i,
			queue:  e.queue,
			sink:   e.sink,
			fsys:   e.fsys,
			fp:     e.fp,
			done:   done,
			ignore: e.ignore,
			idle:   e.cfg.IdleTimeout,
			stats:  &e.stats,
			log:    e.log,
		}
		g.Go(func() error { return wk.run(ctx) })
	}
	runErr := g.Wait()

	// All workers are quiescent; tell the writer to drain and stop.
	e.sink.Close()
	storeErr := <-writerErr

	snap := e.stats.snapshot()
	summary := Summary{
		RunID:       uuid.NewString(),
		Duration:    time.Since(start),
		DirsScanned: snap.DirsScanned,
		DirsResumed: snap.DirsResumed,
		FilesHashed: snap.FilesHashed,
		BytesHashed: snap.BytesHashed,
		Symlinks:    snap.Symlinks,
		Failures:    snap.Failures,
	}

	run := domain.ScanRun{
		ID:          summary.RunID,
		StartedAt:   start,
		FinishedAt:  time.Now(),
		DirsScanned: summary.DirsScanned,
		FilesHashed: summary.FilesHashed,
		Failures:    summary.Failures,
	}
	if err := e.catalog.RecordRun(run); err != nil && storeErr == nil {
		storeErr = fmt.Errorf("record run: %w", err)
	}

	e.log.Info("scan finished",
		"run_id", summary.RunID,
		"duration", summary.Duration,
		"dirs", summary.DirsScanned,
		"resumed", summary.DirsResumed,
		"files", summary.FilesHashed,
		"failures", summary.Failures)

	if storeErr != nil {
		return summary, storeErr
	}
	return summary, runErr
}

// Snapshot returns the current counters and queue depths. Safe to call from
// other goroutines while Run is in flight.
func (e *Engine) Snapshot() Snapshot {
	snap := e.stats.snapshot()
	snap.QueueLen = e.queue.Len()
	snap.SinkLen = e.sink.Len()
	return snap
}
