// Package testutil provides shared test helpers for setting up content trees
// and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "inkwell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	contentDir := t.TempDir()
	store, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatal(err)
	}
	return contentDir, store
}
