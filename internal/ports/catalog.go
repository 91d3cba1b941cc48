package ports

import (
	"context"

	"github.com/lrem/reorg/internal/domain"
)

// Catalog is the persistent store behind the scanner. A single writer
// goroutine owns all mutations; reads happen before workers start or after
// the writer has stopped.
type Catalog interface {
	// DoneDirs returns the resume index: every directory path already
	// marked complete by a prior run.
	DoneDirs(ctx context.Context) (map[string]struct{}, error)

	// Begin starts a write transaction for the writer's batched commits.
	Begin() (CatalogTx, error)

	// RecordRun persists a run summary. Called only once the writer has
	// stopped, so it never races a transaction.
	RecordRun(run domain.ScanRun) error

	Close() error
}

// CatalogTx batches record upserts. All writes are replace-semantics:
// a rescan fully overwrites prior values.
type CatalogTx interface {
	PutFile(rec domain.FileRecord) error
	PutDirectory(rec domain.DirectoryRecord) error
	PutSymlink(rec domain.SymlinkRecord) error
	PutFailure(rec domain.FailureRecord) error

	Commit() error
	Rollback() error
}
