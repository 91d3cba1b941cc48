// Package filesystem implements ports.FileSystem on top of the os package.
package filesystem

import (
	"io"
	"io/fs"
	"os"

	"github.com/lrem/reorg/internal/ports"
)

// FS enumerates real directories.
type FS struct{}

// Ensure FS implements FileSystem
var _ ports.FileSystem = FS{}

// New returns the real-filesystem enumerator.
func New() FS {
	return FS{}
}

// List enumerates a directory's entries.
func (FS) List(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// Readlink resolves a symlink's target without following it.
func (FS) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

// Open opens a file for reading.
func (FS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
