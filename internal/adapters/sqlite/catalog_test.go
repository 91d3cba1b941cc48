package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lrem/reorg/internal/domain"
	"github.com/lrem/reorg/internal/ports"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { catalog.Close() })
	return catalog
}

func commit(t *testing.T, catalog *Catalog, put func(tx ports.CatalogTx) error) {
	t.Helper()
	tx, err := catalog.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := put(tx); err != nil {
		tx.Rollback()
		t.Fatalf("put: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestPutFileReplaces(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	rec := domain.FileRecord{
		AbsPath:     "/pics/a.jpg",
		BaseName:    "a.jpg",
		DirName:     "/pics",
		Extension:   "jpg",
		Size:        10,
		MTime:       time.Unix(1700000000, 0),
		ContentHash: "old",
	}
	commit(t, catalog, func(tx ports.CatalogTx) error { return tx.PutFile(rec) })

	rec.ContentHash = "new"
	rec.Size = 20
	commit(t, catalog, func(tx ports.CatalogTx) error { return tx.PutFile(rec) })

	got, err := catalog.File(ctx, "/pics/a.jpg")
	if err != nil || got == nil {
		t.Fatalf("file: %v, %v", got, err)
	}
	if got.ContentHash != "new" || got.Size != 20 {
		t.Errorf("rescan did not replace: %+v", got)
	}

	counts, err := catalog.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Files != 1 {
		t.Errorf("files count = %d, want 1 (upsert, not append)", counts.Files)
	}
}

func TestDoneDirs(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	done, err := catalog.DoneDirs(ctx)
	if err != nil {
		t.Fatalf("done dirs: %v", err)
	}
	if len(done) != 0 {
		t.Errorf("fresh catalog has %d done dirs", len(done))
	}

	commit(t, catalog, func(tx ports.CatalogTx) error {
		if err := tx.PutDirectory(domain.DirectoryRecord{AbsPath: "/pics", LastScanned: time.Now()}); err != nil {
			return err
		}
		return tx.PutDirectory(domain.DirectoryRecord{AbsPath: "/pics/S", LastScanned: time.Now()})
	})

	done, err = catalog.DoneDirs(ctx)
	if err != nil {
		t.Fatalf("done dirs: %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("done dirs = %d, want 2", len(done))
	}
	if _, ok := done["/pics/S"]; !ok {
		t.Error("missing /pics/S in resume index")
	}
}

func TestFailuresOrderAndLimit(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0)
	commit(t, catalog, func(tx ports.CatalogTx) error {
		for i, path := range []string{"/a", "/b", "/c"} {
			rec := domain.FailureRecord{
				AbsPath: path,
				Time:    base.Add(time.Duration(i) * time.Minute),
				Message: "broken",
			}
			if err := tx.PutFailure(rec); err != nil {
				return err
			}
		}
		return nil
	})

	failures, err := catalog.Failures(ctx, 0)
	if err != nil {
		t.Fatalf("failures: %v", err)
	}
	if len(failures) != 3 {
		t.Fatalf("failures = %d, want 3", len(failures))
	}
	if failures[0].AbsPath != "/c" {
		t.Errorf("most recent first: got %s", failures[0].AbsPath)
	}

	limited, err := catalog.Failures(ctx, 2)
	if err != nil {
		t.Fatalf("failures limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited failures = %d, want 2", len(limited))
	}
}

func TestRuns(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	run, err := catalog.LastRun(ctx)
	if err != nil {
		t.Fatalf("last run: %v", err)
	}
	if run != nil {
		t.Errorf("fresh catalog has a run: %+v", run)
	}

	first := domain.ScanRun{
		ID:         "run-1",
		StartedAt:  time.Unix(1700000000, 0),
		FinishedAt: time.Unix(1700000100, 0),
	}
	second := domain.ScanRun{
		ID:          "run-2",
		StartedAt:   time.Unix(1700001000, 0),
		FinishedAt:  time.Unix(1700001200, 0),
		DirsScanned: 5,
		FilesHashed: 9,
		Failures:    1,
	}
	if err := catalog.RecordRun(first); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := catalog.RecordRun(second); err != nil {
		t.Fatalf("record run: %v", err)
	}

	run, err = catalog.LastRun(ctx)
	if err != nil || run == nil {
		t.Fatalf("last run: %v, %v", run, err)
	}
	if run.ID != "run-2" || run.DirsScanned != 5 || run.FilesHashed != 9 || run.Failures != 1 {
		t.Errorf("last run = %+v, want run-2 with 5/9/1", run)
	}
}

func TestMissingRowsAreNil(t *testing.T) {
	catalog := openTestCatalog(t)
	ctx := context.Background()

	if file, err := catalog.File(ctx, "/nope"); err != nil || file != nil {
		t.Errorf("File = %v, %v; want nil, nil", file, err)
	}
	if dir, err := catalog.Directory(ctx, "/nope"); err != nil || dir != nil {
		t.Errorf("Directory = %v, %v; want nil, nil", dir, err)
	}
	if link, err := catalog.Symlink(ctx, "/nope"); err != nil || link != nil {
		t.Errorf("Symlink = %v, %v; want nil, nil", link, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	catalog, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	commit(t, catalog, func(tx ports.CatalogTx) error {
		return tx.PutDirectory(domain.DirectoryRecord{AbsPath: "/pics", LastScanned: time.Now()})
	})
	if err := catalog.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	done, err := reopened.DoneDirs(context.Background())
	if err != nil {
		t.Fatalf("done dirs: %v", err)
	}
	if _, ok := done["/pics"]; !ok {
		t.Error("directory row lost across reopen")
	}
}
