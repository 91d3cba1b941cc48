package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

// commitAttempts bounds the writer's retries of a failing commit before the
// run is halted with the error reported.
const commitAttempts = 3

type opKind int

const (
	opFile opKind = iota
	opDirectory
	opSymlink
	opFailure
)

// op is a store mutation descriptor. Every worker expresses its writes as
// ops so that exactly one goroutine ever touches the catalog.
type op struct {
	kind    opKind
	file    domain.FileRecord
	dir     domain.DirectoryRecord
	symlink domain.SymlinkRecord
	failure domain.FailureRecord
}

// Sink is the multi-producer, single-consumer channel feeding the writer.
// A bounded capacity applies backpressure to workers when the store cannot
// keep up; in practice hashing dominates, so this rarely engages.
type Sink struct {
	ops     chan op
	pending atomic.Int64
}

// NewSink creates a sink with the given capacity.
func NewSink(capacity int) *Sink {
	return &Sink{ops: make(chan op, capacity)}
}

func (s *Sink) push(ctx context.Context, o op) error {
	select {
	case s.ops <- o:
		s.pending.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutFile queues a file record for persistence.
func (s *Sink) PutFile(ctx context.Context, rec domain.FileRecord) error {
	return s.push(ctx, op{kind: opFile, file: rec})
}

// PutDirectory queues a directory record for persistence.
func (s *Sink) PutDirectory(ctx context.Context, rec domain.DirectoryRecord) error {
	return s.push(ctx, op{kind: opDirectory, dir: rec})
}

// PutSymlink queues a symlink record for persistence.
func (s *Sink) PutSymlink(ctx context.Context, rec domain.SymlinkRecord) error {
	return s.push(ctx, op{kind: opSymlink, symlink: rec})
}

// PutFailure queues a failure record for persistence.
func (s *Sink) PutFailure(ctx context.Context, rec domain.FailureRecord) error {
	return s.push(ctx, op{kind: opFailure, failure: rec})
}

// Len reports the approximate number of queued operations.
func (s *Sink) Len() int {
	return int(s.pending.Load())
}

// Close signals the writer to drain remaining operations and stop.
// Call only after every producer has stopped.
func (s *Sink) Close() {
	close(s.ops)
}

// writer is the single goroutine owning the catalog during a run. It
// applies operations inside a transaction that is committed on a short idle
// interval, so progress survives long gaps, and once more on shutdown.
type writer struct {
	catalog ports.Catalog
	sink    *Sink
	flush   time.Duration
	stats   *Stats
	log     *slog.Logger
}

// run loops until the sink is closed and drained. A store error does not
// stop the loop: the writer keeps draining (discarding) so workers never
// block on a dead sink, and reports the error when it returns.
func (w *writer) run() error {
	var tx ports.CatalogTx
	var fatal error

	timer := time.NewTimer(w.flush)
	defer timer.Stop()

	for {
		select {
		case o, ok := <-w.sink.ops:
			if !ok {
				if fatal != nil {
					return fatal
				}
				return w.commit(tx)
			}
			w.sink.pending.Add(-1)
			if fatal != nil {
				continue
			}
			if tx == nil {
				var err error
				if tx, err = w.catalog.Begin(); err != nil {
					fatal = fmt.Errorf("begin transaction: %w", err)
					w.log.Error("writer halted", "error", fatal)
					continue
				}
			}
			if err := w.apply(tx, o); err != nil {
				tx.Rollback()
				tx = nil
				fatal = fmt.Errorf("apply record: %w", err)
				w.log.Error("writer halted", "error", fatal)
				continue
			}
			w.stats.Writes.Add(1)

		case <-timer.C:
			if fatal == nil && tx != nil {
				if err := w.commit(tx); err != nil {
					fatal = err
					w.log.Error("writer halted", "error", fatal)
				} else {
					w.log.Debug("periodic commit", "sink_len", w.sink.Len())
				}
				tx = nil
			}
			timer.Reset(w.flush)
		}
	}
}

func (w *writer) apply(tx ports.CatalogTx, o op) error {
	switch o.kind {
	case opFile:
		return tx.PutFile(o.file)
	case opDirectory:
		return tx.PutDirectory(o.dir)
	case opSymlink:
		return tx.PutSymlink(o.symlink)
	case opFailure:
		return tx.PutFailure(o.failure)
	}
	return fmt.Errorf("unknown operation kind %d", o.kind)
}

// commit commits tx with bounded retries. nil tx is a no-op.
func (w *writer) commit(tx ports.CatalogTx) error {
	if tx == nil {
		return nil
	}
	var err error
	for attempt := 1; attempt <= commitAttempts; attempt++ {
		if err = tx.Commit(); err == nil {
			return nil
		}
		w.log.Warn("commit failed", "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("commit after %d attempts: %w", commitAttempts, err)
}
