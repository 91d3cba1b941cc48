package domain

import (
	"strings"
	"time"
)

// FileRecord is the catalog row for a regular file, keyed by absolute path.
type FileRecord struct {
	AbsPath     string // Absolute path (primary key)
	BaseName    string
	DirName     string // Parent directory
	Extension   string // Text after the last dot, empty when none
	Size        int64
	MTime       time.Time
	ContentHash string // Hex digest of the full file content
}

// DirectoryRecord marks a directory pass as complete. Its presence in the
// catalog is what makes a later run skip rehashing the directory's files.
type DirectoryRecord struct {
	AbsPath      string // Absolute path (primary key)
	FileCount    int    // Regular files directly inside
	DirCount     int    // Subdirectory entries, ignored ones included
	SymlinkCount int
	LastScanned  time.Time
}

// SymlinkRecord stores a symlink's target without following it.
type SymlinkRecord struct {
	AbsPath string // Absolute path (primary key)
	Target  string
}

// FailureRecord captures an unrecoverable per-directory scan error.
type FailureRecord struct {
	AbsPath string // Absolute path (primary key)
	Time    time.Time
	Message string
}

// ScanRun summarizes one engine run for post-hoc inspection.
type ScanRun struct {
	ID          string // UUID
	StartedAt   time.Time
	FinishedAt  time.Time
	DirsScanned int64
	FilesHashed int64
	Failures    int64
}

// Extension returns the part of name after its last dot, or an empty string
// when the name contains no dot. Dotfiles like ".bashrc" yield "bashrc".
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return name[i+1:]
}
