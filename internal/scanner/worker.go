package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

// worker pulls directory paths from the queue until its own dequeue times
// out. Workers share no mutable state: they interact only through the work
// queue, the sink, and the read-only resume index.
type worker struct {
	id     int
	queue  *Queue
	sink   *Sink
	fsys   ports.FileSystem
	fp     ports.Fingerprinter
	done   map[string]struct{} // resume index snapshot, read-only
	ignore domain.IgnoreSet
	idle   time.Duration
	stats  *Stats
	log    *slog.Logger
}

// run processes directories until the queue stays empty for the idle
// timeout. This is a per-worker local decision, not a synchronized barrier:
// a producer could in principle enqueue at the instant every consumer times
// out, but work only shrinks as the tree is consumed, so in practice the
// heuristic terminates cleanly.
func (w *worker) run(ctx context.Context) error {
	for {
		dir, ok := w.queue.Dequeue(ctx, w.idle)
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			w.log.Debug("worker idle, exiting", "worker", w.id, "idle_timeout", w.idle)
			return nil
		}
		if err := w.scanDir(ctx, dir); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.stats.Failures.Add(1)
			w.log.Warn("directory failed", "path", dir, "error", err)
			rec := domain.FailureRecord{AbsPath: dir, Time: time.Now(), Message: err.Error()}
			if perr := w.sink.PutFailure(ctx, rec); perr != nil {
				return perr
			}
		}
	}
}

// scanDir enumerates dir once, re-enqueues subdirectories, and (unless dir
// was completed by a prior run) records symlinks, hashes files, and finally
// emits the directory record. The first unrecoverable error aborts the
// pass; the caller turns it into a failure record for dir.
func (w *worker) scanDir(ctx context.Context, dir string) error {
	_, done := w.done[dir]
	if done {
		w.log.Debug("re-processing directory", "path", dir, "queued", w.queue.Len())
	} else {
		w.log.Debug("processing directory", "path", dir, "queued", w.queue.Len())
	}

	entries, err := w.fsys.List(dir)
	if err != nil {
		return err
	}

	var files []fs.DirEntry
	var dirCount, symlinkCount int
	for _, entry := range entries {
		name := entry.Name()
		abs := filepath.Join(dir, name)
		switch {
		case entry.IsDir():
			// Always descend, even under a directory that is already
			// done, so children created since the prior run are still
			// discovered. Ignored names are counted but get no row and
			// no descent.
			dirCount++
			if !w.ignore.Match(name) {
				if err := w.queue.Enqueue(ctx, abs); err != nil {
					return err
				}
			}
		case done:
			// Resume hit: files and symlinks were recorded by the run
			// that completed this directory.
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := w.fsys.Readlink(abs)
			if err != nil {
				return err
			}
			if err := w.sink.PutSymlink(ctx, domain.SymlinkRecord{AbsPath: abs, Target: target}); err != nil {
				return err
			}
			w.stats.Symlinks.Add(1)
			symlinkCount++
		case entry.Type().IsRegular():
			files = append(files, entry)
		default:
			// Sockets, pipes and devices are neither hashed nor counted.
		}
	}

	if done {
		w.stats.DirsResumed.Add(1)
		return nil
	}

	for _, entry := range files {
		rec, err := w.fileRecord(dir, entry)
		if err != nil {
			return err
		}
		if err := w.sink.PutFile(ctx, rec); err != nil {
			return err
		}
		w.stats.FilesHashed.Add(1)
		w.stats.BytesHashed.Add(rec.Size)
	}

	rec := domain.DirectoryRecord{
		AbsPath:      dir,
		FileCount:    len(files),
		DirCount:     dirCount,
		SymlinkCount: symlinkCount,
		LastScanned:  time.Now(),
	}
	if err := w.sink.PutDirectory(ctx, rec); err != nil {
		return err
	}
	w.stats.DirsScanned.Add(1)
	return nil
}

// fileRecord stats and fingerprints one regular file.
func (w *worker) fileRecord(dir string, entry fs.DirEntry) (domain.FileRecord, error) {
	name := entry.Name()
	abs := filepath.Join(dir, name)

	info, err := entry.Info()
	if err != nil {
		return domain.FileRecord{}, err
	}

	f, err := w.fsys.Open(abs)
	if err != nil {
		return domain.FileRecord{}, err
	}
	sum, err := w.fp.Sum(f)
	f.Close()
	if err != nil {
		return domain.FileRecord{}, err
	}

	return domain.FileRecord{
		AbsPath:     abs,
		BaseName:    name,
		DirName:     dir,
		Extension:   domain.Extension(name),
		Size:        info.Size(),
		MTime:       info.ModTime(),
		ContentHash: sum,
	}, nil
}
