package sqlite

import (
	"database/sql"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

// catalogTx implements ports.CatalogTx
type catalogTx struct {
	tx *sql.Tx
}

// Ensure catalogTx implements CatalogTx
var _ ports.CatalogTx = (*catalogTx)(nil)

// PutFile upserts a file row, fully replacing any prior values.
func (t *catalogTx) PutFile(rec domain.FileRecord) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO files (abs_path, base_name, dir_name, extension, size, mtime, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.AbsPath, rec.BaseName, rec.DirName, rec.Extension, rec.Size, rec.MTime.Unix(), rec.ContentHash)
	return err
}

// PutDirectory upserts a directory row.
func (t *catalogTx) PutDirectory(rec domain.DirectoryRecord) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO directories (abs_path, file_count, dir_count, symlink_count, last_scanned_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.AbsPath, rec.FileCount, rec.DirCount, rec.SymlinkCount, rec.LastScanned.Unix())
	return err
}

// PutSymlink upserts a symlink row.
func (t *catalogTx) PutSymlink(rec domain.SymlinkRecord) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO symlinks (abs_path, target) VALUES (?, ?)
	`, rec.AbsPath, rec.Target)
	return err
}

// PutFailure upserts a failure row.
func (t *catalogTx) PutFailure(rec domain.FailureRecord) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO failures (abs_path, timestamp, error_message)
		VALUES (?, ?, ?)
	`, rec.AbsPath, rec.Time.Unix(), rec.Message)
	return err
}

// Commit commits the transaction.
func (t *catalogTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *catalogTx) Rollback() error {
	return t.tx.Rollback()
}
