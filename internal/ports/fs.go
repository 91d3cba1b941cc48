package ports

import (
	"io"
	"io/fs"
)

// FileSystem is the enumeration primitive the scanner walks with.
// The default implementation wraps the os package; tests substitute fakes
// to inject faults deterministically.
type FileSystem interface {
	// List enumerates a directory's entries exactly once.
	List(path string) ([]fs.DirEntry, error)

	// Readlink resolves a symlink's target without following it.
	Readlink(path string) (string, error)

	// Open opens a regular file for fingerprinting.
	Open(path string) (io.ReadCloser, error)
}

// Fingerprinter turns a file's byte stream into a fixed-length digest
// string, used as a stable identity key for later dedup tooling.
type Fingerprinter interface {
	Name() string
	Sum(r io.Reader) (string, error)
}
