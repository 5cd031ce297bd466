//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents_fts`).Scan(&count); err != nil {
		t.Fatalf("documents_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := post("_posts/2021-01-01-fts.md", "FTS Post", time.Now(), []string{"search"}, nil, false)
	if err := db.UpsertDocument(row, "Inkwell provides powerful full-text search capabilities."); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != row.Path {
		t.Errorf("path = %q", results[0].Path)
	}
	// FTS5 snippet should contain bold markers.
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(post("_posts/2021-01-01-gone.md", "Gone", time.Now(), nil, nil, false), "vanishing content")
	_ = db.DeleteDocument("_posts/2021-01-01-gone.md")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "_posts/2021-01-01-gone.md" {
			t.Error("deleted document still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	p := "_posts/2021-01-01-evo.md"
	_ = db.UpsertDocument(post(p, "Old", time.Now(), nil, nil, false), "original text")
	_ = db.UpsertDocument(post(p, "New", time.Now(), nil, nil, false), "replacement text")

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
