// Package sqlite implements ports.Catalog using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Catalog holds the scan results. It does not support concurrent writers;
// all mutations must funnel through the scanner's single writer goroutine.
type Catalog struct {
	db   *sql.DB
	path string
}

// Ensure Catalog implements ports.Catalog
var _ ports.Catalog = (*Catalog)(nil)

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	// Expand ~ in path
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS files (
			abs_path TEXT PRIMARY KEY,
			base_name TEXT NOT NULL,
			dir_name TEXT NOT NULL,
			extension TEXT NOT NULL,
			size INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			content_hash TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS directories (
			abs_path TEXT PRIMARY KEY,
			file_count INTEGER NOT NULL,
			dir_count INTEGER NOT NULL,
			symlink_count INTEGER NOT NULL,
			last_scanned_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS symlinks (
			abs_path TEXT PRIMARY KEY,
			target TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS failures (
			abs_path TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			error_message TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			dirs_scanned INTEGER NOT NULL,
			files_hashed INTEGER NOT NULL,
			failures INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_files_hash ON files(content_hash);
		CREATE INDEX IF NOT EXISTS idx_files_dir ON files(dir_name);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return &Catalog{db: db, path: path}, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (c *Catalog) Path() string {
	return c.path
}

// DoneDirs returns every directory path already marked complete. Loaded
// once before workers start; the snapshot is read-only for the run.
func (c *Catalog) DoneDirs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT abs_path FROM directories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		done[path] = struct{}{}
	}
	return done, rows.Err()
}

// Begin starts a write transaction.
func (c *Catalog) Begin() (ports.CatalogTx, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, err
	}
	return &catalogTx{tx: tx}, nil
}

// RecordRun persists a run summary row.
func (c *Catalog) RecordRun(run domain.ScanRun) error {
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO runs (id, started_at, finished_at, dirs_scanned, files_hashed, failures)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(), run.DirsScanned, run.FilesHashed, run.Failures)
	return err
}
