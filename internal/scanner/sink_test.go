package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memCatalog is an in-memory ports.Catalog for writer tests.
type memCatalog struct {
	mu       sync.Mutex
	files    map[string]domain.FileRecord
	dirs     map[string]domain.DirectoryRecord
	symlinks map[string]domain.SymlinkRecord
	failures map[string]domain.FailureRecord
	runs     []domain.ScanRun
	commits  int
	failPuts bool
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		files:    make(map[string]domain.FileRecord),
		dirs:     make(map[string]domain.DirectoryRecord),
		symlinks: make(map[string]domain.SymlinkRecord),
		failures: make(map[string]domain.FailureRecord),
	}
}

func (c *memCatalog) DoneDirs(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := make(map[string]struct{}, len(c.dirs))
	for path := range c.dirs {
		done[path] = struct{}{}
	}
	return done, nil
}

func (c *memCatalog) Begin() (ports.CatalogTx, error) {
	return &memTx{c: c}, nil
}

func (c *memCatalog) RecordRun(run domain.ScanRun) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, run)
	return nil
}

func (c *memCatalog) Close() error { return nil }

func (c *memCatalog) commitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}

type memTx struct {
	c        *memCatalog
	files    []domain.FileRecord
	dirs     []domain.DirectoryRecord
	symlinks []domain.SymlinkRecord
	failures []domain.FailureRecord
}

var errPutFailed = errors.New("store rejected write")

func (t *memTx) PutFile(rec domain.FileRecord) error {
	if t.c.failPuts {
		return errPutFailed
	}
	t.files = append(t.files, rec)
	return nil
}

func (t *memTx) PutDirectory(rec domain.DirectoryRecord) error {
	if t.c.failPuts {
		return errPutFailed
	}
	t.dirs = append(t.dirs, rec)
	return nil
}

func (t *memTx) PutSymlink(rec domain.SymlinkRecord) error {
	if t.c.failPuts {
		return errPutFailed
	}
	t.symlinks = append(t.symlinks, rec)
	return nil
}

func (t *memTx) PutFailure(rec domain.FailureRecord) error {
	if t.c.failPuts {
		return errPutFailed
	}
	t.failures = append(t.failures, rec)
	return nil
}

func (t *memTx) Commit() error {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	for _, rec := range t.files {
		t.c.files[rec.AbsPath] = rec
	}
	for _, rec := range t.dirs {
		t.c.dirs[rec.AbsPath] = rec
	}
	for _, rec := range t.symlinks {
		t.c.symlinks[rec.AbsPath] = rec
	}
	for _, rec := range t.failures {
		t.c.failures[rec.AbsPath] = rec
	}
	t.c.commits++
	return nil
}

func (t *memTx) Rollback() error { return nil }

func TestWriterAppliesAllKindsOnStop(t *testing.T) {
	catalog := newMemCatalog()
	sink := NewSink(16)
	ctx := context.Background()

	sink.PutFile(ctx, domain.FileRecord{AbsPath: "/r/a.jpg", ContentHash: "abc"})
	sink.PutSymlink(ctx, domain.SymlinkRecord{AbsPath: "/r/link", Target: "/elsewhere"})
	sink.PutDirectory(ctx, domain.DirectoryRecord{AbsPath: "/r", FileCount: 1})
	sink.PutFailure(ctx, domain.FailureRecord{AbsPath: "/r/bad", Message: "permission denied"})
	sink.Close()

	var stats Stats
	w := &writer{catalog: catalog, sink: sink, flush: time.Second, stats: &stats, log: discardLogger()}
	if err := w.run(); err != nil {
		t.Fatalf("writer: %v", err)
	}

	if len(catalog.files) != 1 || len(catalog.dirs) != 1 || len(catalog.symlinks) != 1 || len(catalog.failures) != 1 {
		t.Errorf("committed %d/%d/%d/%d records, want 1 of each",
			len(catalog.files), len(catalog.dirs), len(catalog.symlinks), len(catalog.failures))
	}
	if got := stats.Writes.Load(); got != 4 {
		t.Errorf("Writes = %d, want 4", got)
	}
}

func TestWriterPeriodicCommit(t *testing.T) {
	catalog := newMemCatalog()
	sink := NewSink(16)

	var stats Stats
	w := &writer{catalog: catalog, sink: sink, flush: 20 * time.Millisecond, stats: &stats, log: discardLogger()}
	done := make(chan error, 1)
	go func() { done <- w.run() }()

	sink.PutFile(context.Background(), domain.FileRecord{AbsPath: "/r/a.jpg"})

	// The idle flush must commit without the sink closing.
	deadline := time.Now().Add(time.Second)
	for catalog.commitCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no periodic commit within deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sink.Close()
	if err := <-done; err != nil {
		t.Fatalf("writer: %v", err)
	}
}

func TestWriterStoreFailureDrainsWithoutBlocking(t *testing.T) {
	catalog := newMemCatalog()
	catalog.failPuts = true
	sink := NewSink(4)

	var stats Stats
	w := &writer{catalog: catalog, sink: sink, flush: time.Second, stats: &stats, log: discardLogger()}
	done := make(chan error, 1)
	go func() { done <- w.run() }()

	// Far more ops than the sink holds: if the writer stopped consuming
	// after the fault, this would deadlock.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := sink.PutFile(ctx, domain.FileRecord{AbsPath: "/r/f"}); err != nil {
			t.Fatalf("producer blocked on dead writer: %v", err)
		}
	}
	sink.Close()

	err := <-done
	if !errors.Is(err, errPutFailed) {
		t.Fatalf("writer error = %v, want %v", err, errPutFailed)
	}
	if len(catalog.files) != 0 {
		t.Errorf("records committed despite store failure: %d", len(catalog.files))
	}
}
