package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ferrant/inkwell/internal/storage"
)

// watcherTestEnv sets up a content dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	contentDir := t.TempDir()
	store, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "inkwell-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return contentDir, store, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSync_IndexesAndPrunes(t *testing.T) {
	contentDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	postPath := filepath.Join(contentDir, "_posts")
	_ = os.MkdirAll(postPath, 0o755)
	_ = os.WriteFile(filepath.Join(postPath, "2021-05-01-nets.md"),
		[]byte("---\ntitle: Neural Nets\ndate: 2021-05-01 09:00:00 +0000\n---\nbody"), 0o644)

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	row, _ := db.GetDocument("_posts/2021-05-01-nets.md")
	if row == nil || row.Kind != "post" || row.Slug != "nets" {
		t.Fatalf("row = %+v", row)
	}

	// Remove the file; a second sync must prune the entry.
	_ = os.Remove(filepath.Join(postPath, "2021-05-01-nets.md"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	cs, _ := db.GetChecksum("_posts/2021-05-01-nets.md")
	if cs != "" {
		t.Error("stale entry survived sync")
	}
}

func TestBuildRow_FilenameDateFallback(t *testing.T) {
	row, _ := BuildRow("_posts/2019-03-02-borrow.md", []byte("---\ntitle: Borrow\n---\nbody"))
	want := time.Date(2019, 3, 2, 0, 0, 0, 0, time.UTC)
	if !row.Date.Equal(want) {
		t.Errorf("date = %v, want filename fallback %v", row.Date, want)
	}
	if row.Kind != "post" || row.Slug != "borrow" {
		t.Errorf("row = %+v", row)
	}
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	contentDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, contentDir, quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(contentDir, "about.md"), []byte("# About"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("about.md")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:about.md" {
				return true
			}
		}
		return false
	}, "expected created:about.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	contentDir, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, contentDir, quietLogger(), nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(contentDir, "_posts")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "2021-01-01-deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("_posts/2021-01-01-deep.md")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	contentDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.WriteFile(filepath.Join(contentDir, "del.md"), []byte("# Delete Me"), 0o644)
	Sync(db, store, logger)

	cs, _ := db.GetChecksum("del.md")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, contentDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(contentDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.md")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_PublishDraftRename(t *testing.T) {
	contentDir, store, db := watcherTestEnv(t)
	logger := quietLogger()

	_ = os.MkdirAll(filepath.Join(contentDir, "_drafts"), 0o755)
	_ = os.MkdirAll(filepath.Join(contentDir, "_posts"), 0o755)
	_ = os.WriteFile(filepath.Join(contentDir, "_drafts", "nets.md"),
		[]byte("---\ntitle: Nets\n---\nbody"), 0o644)
	Sync(db, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, contentDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(contentDir, "_drafts", "nets.md"),
		filepath.Join(contentDir, "_posts", "2021-06-01-nets.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldRow, _ := db.GetDocument("_drafts/nets.md")
		newRow, _ := db.GetDocument("_posts/2021-06-01-nets.md")
		return oldRow == nil && newRow != nil && newRow.Kind == "post"
	}, "publish rename: draft entry should be replaced by a post entry")
}
