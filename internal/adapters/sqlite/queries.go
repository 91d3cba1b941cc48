package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/lrem/reorg/internal/domain"
)

// Counts holds per-table row counts for `reorg stats`.
type Counts struct {
	Files       int64
	Directories int64
	Symlinks    int64
	Failures    int64
}

// Counts tallies the catalog's relations.
func (c *Catalog) Counts(ctx context.Context) (Counts, error) {
	var n Counts
	for _, q := range []struct {
		query string
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM files`, &n.Files},
		{`SELECT COUNT(*) FROM directories`, &n.Directories},
		{`SELECT COUNT(*) FROM symlinks`, &n.Symlinks},
		{`SELECT COUNT(*) FROM failures`, &n.Failures},
	} {
		if err := c.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return Counts{}, err
		}
	}
	return n, nil
}

// Failures returns up to limit failure rows, most recent first.
// A limit of 0 returns everything.
func (c *Catalog) Failures(ctx context.Context, limit int) ([]domain.FailureRecord, error) {
	query := `SELECT abs_path, timestamp, error_message FROM failures ORDER BY timestamp DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FailureRecord
	for rows.Next() {
		var rec domain.FailureRecord
		var ts int64
		if err := rows.Scan(&rec.AbsPath, &ts, &rec.Message); err != nil {
			return nil, err
		}
		rec.Time = time.Unix(ts, 0)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// File returns the file row for an absolute path, or nil when absent.
func (c *Catalog) File(ctx context.Context, absPath string) (*domain.FileRecord, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT abs_path, base_name, dir_name, extension, size, mtime, content_hash
		FROM files WHERE abs_path = ?
	`, absPath)
	return scanFile(row)
}

// FilesByHash returns every file row sharing a content hash. This is the
// lookup the downstream dedup tooling leans on.
func (c *Catalog) FilesByHash(ctx context.Context, hash string) ([]domain.FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT abs_path, base_name, dir_name, extension, size, mtime, content_hash
		FROM files WHERE content_hash = ? ORDER BY abs_path
	`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FileRecord
	for rows.Next() {
		rec, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Directory returns the directory row for an absolute path, or nil when
// absent.
func (c *Catalog) Directory(ctx context.Context, absPath string) (*domain.DirectoryRecord, error) {
	var rec domain.DirectoryRecord
	var scanned int64
	err := c.db.QueryRowContext(ctx, `
		SELECT abs_path, file_count, dir_count, symlink_count, last_scanned_at
		FROM directories WHERE abs_path = ?
	`, absPath).Scan(&rec.AbsPath, &rec.FileCount, &rec.DirCount, &rec.SymlinkCount, &scanned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.LastScanned = time.Unix(scanned, 0)
	return &rec, nil
}

// Symlink returns the symlink row for an absolute path, or nil when absent.
func (c *Catalog) Symlink(ctx context.Context, absPath string) (*domain.SymlinkRecord, error) {
	var rec domain.SymlinkRecord
	err := c.db.QueryRowContext(ctx, `
		SELECT abs_path, target FROM symlinks WHERE abs_path = ?
	`, absPath).Scan(&rec.AbsPath, &rec.Target)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dst ...any) error
}

func scanFile(row rowScanner) (*domain.FileRecord, error) {
	var rec domain.FileRecord
	var mtime int64
	err := row.Scan(&rec.AbsPath, &rec.BaseName, &rec.DirName, &rec.Extension, &rec.Size, &mtime, &rec.ContentHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.MTime = time.Unix(mtime, 0)
	return &rec, nil
}

// LastRun returns the most recently finished run, or nil when none exists.
func (c *Catalog) LastRun(ctx context.Context) (*domain.ScanRun, error) {
	var run domain.ScanRun
	var started, finished int64

	err := c.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, dirs_scanned, files_hashed, failures
		FROM runs ORDER BY finished_at DESC LIMIT 1
	`).Scan(&run.ID, &started, &finished, &run.DirsScanned, &run.FilesHashed, &run.Failures)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.StartedAt = time.Unix(started, 0)
	run.FinishedAt = time.Unix(finished, 0)
	return &run, nil
}
