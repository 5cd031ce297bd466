package contentservice

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ferrant/inkwell/internal/apperr"
	"github.com/ferrant/inkwell/internal/feed"
	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/testutil"
)

const postContent = `---
title: Evening in Lisbon
author: Jane Doe
date: 2024-03-10 21:15:00 +0000
categories:
  - travel
tags:
  - portugal
---

# Evening in Lisbon

The tram climbed past the miradouro.
`

const hiddenPost = `---
title: Secret notes
date: 2024-03-11 08:00:00 +0000
hidden: true
---

Not for the feed.
`

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestContent(t)
	db := testutil.TestDB(t)
	site := feed.Site{Title: "Field Notes", Author: "Jane Doe", BaseURL: "https://notes.example.com"}
	return NewService(store, db, site, 10)
}

func TestCreateGetRoundtrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateDocument(ctx, "_posts/2024-03-10-evening-in-lisbon.md", []byte(postContent))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "evening-in-lisbon" {
		t.Errorf("slug = %q", created.Slug)
	}

	got, err := svc.GetDocument(ctx, "_posts/2024-03-10-evening-in-lisbon.md", false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Evening in Lisbon" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Kind != "post" {
		t.Errorf("kind = %q", got.Kind)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "travel" {
		t.Errorf("categories = %v", got.Categories)
	}
	want := time.Date(2024, 3, 10, 21, 15, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Errorf("date = %v, want %v", got.Date, want)
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "_drafts/x.md", []byte(postContent)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateDocument(ctx, "_drafts/x.md", []byte(postContent))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateChecksumConflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.CreateDocument(ctx, "_drafts/y.md", []byte(postContent))
	if err != nil {
		t.Fatal(err)
	}

	v2 := []byte(postContent + "\nAnother paragraph.\n")
	if _, err := svc.UpdateDocument(ctx, "_drafts/y.md", v2, created.Checksum); err != nil {
		t.Fatalf("update with fresh checksum: %v", err)
	}

	// The original checksum is stale now.
	_, err = svc.UpdateDocument(ctx, "_drafts/y.md", v2, created.Checksum)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateMissingDocument(t *testing.T) {
	svc := testService(t)

	_, err := svc.UpdateDocument(context.Background(), "_drafts/ghost.md", []byte("x"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesFromListing(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	path := "_posts/2024-03-10-evening-in-lisbon.md"
	if _, err := svc.CreateDocument(ctx, path, []byte(postContent)); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteDocument(ctx, path); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items, total, err := svc.ListPosts(ctx, index.PostQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("list after delete = %d items, total %d", len(items), total)
	}

	_, err = svc.GetDocument(ctx, path, false)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestGetDocumentRendersHTML(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	path := "_posts/2024-03-10-evening-in-lisbon.md"
	if _, err := svc.CreateDocument(ctx, path, []byte(postContent)); err != nil {
		t.Fatal(err)
	}

	doc, err := svc.GetDocument(ctx, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.HTML, "<h1") {
		t.Errorf("html = %q, want rendered heading", doc.HTML)
	}

	doc, err = svc.GetDocument(ctx, path, false)
	if err != nil {
		t.Fatal(err)
	}
	if doc.HTML != "" {
		t.Error("html should be empty without format=html")
	}
}

func TestFeedOutput(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "_posts/2024-03-10-evening-in-lisbon.md", []byte(postContent)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateDocument(ctx, "_posts/2024-03-11-secret-notes.md", []byte(hiddenPost)); err != nil {
		t.Fatal(err)
	}

	out, err := svc.Feed(ctx)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<title>Field Notes</title>") {
		t.Errorf("feed missing site title: %s", s)
	}
	if !strings.Contains(s, "Evening in Lisbon") {
		t.Errorf("feed missing post: %s", s)
	}
	if strings.Contains(s, "Secret notes") {
		t.Errorf("hidden post leaked into feed: %s", s)
	}
	if !strings.Contains(s, "https://notes.example.com/evening-in-lisbon") {
		t.Errorf("feed missing entry URL: %s", s)
	}
	// Rendered body is embedded, not raw Markdown.
	if !strings.Contains(s, "miradouro") {
		t.Errorf("feed missing body content: %s", s)
	}
}

func TestFeedEmptyCorpus(t *testing.T) {
	svc := testService(t)

	out, err := svc.Feed(context.Background())
	if err != nil {
		t.Fatalf("feed on empty corpus: %v", err)
	}
	if !strings.Contains(string(out), "<feed") {
		t.Errorf("feed output = %s", out)
	}
}

func TestTaxonomyAndArchive(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, "_posts/2024-03-10-evening-in-lisbon.md", []byte(postContent)); err != nil {
		t.Fatal(err)
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "travel" || cats[0].Count != 1 {
		t.Errorf("categories = %+v", cats)
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Name != "portugal" {
		t.Errorf("tags = %+v", tags)
	}

	buckets, err := svc.Archive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 1 || buckets[0].Year != 2024 || buckets[0].Month != 3 || buckets[0].Count != 1 {
		t.Errorf("archive = %+v", buckets)
	}
}

func TestDocumentDetailJSONShape(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	page := "---\ntitle: About\nicon: user\norder: 3\n---\nhi\n"
	doc, err := svc.CreateDocument(ctx, "about.md", []byte(page))
	if err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(out, &m)

	// Domain document fields flatten into the top level.
	for _, key := range []string{"path", "kind", "slug", "title", "icon", "order", "body", "content", "checksum"} {
		if _, ok := m[key]; !ok {
			t.Errorf("detail JSON missing %q: %s", key, out)
		}
	}
	if m["kind"] != "page" || m["icon"] != "user" {
		t.Errorf("detail JSON = %s", out)
	}
	// Taxonomy arrays are always present, even when empty.
	if _, ok := m["categories"].([]any); !ok {
		t.Errorf("categories absent or not an array: %s", out)
	}
	if _, ok := m["tags"].([]any); !ok {
		t.Errorf("tags absent or not an array: %s", out)
	}
}

func TestListPagesNavigationOrder(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	about := "---\ntitle: About\nicon: user\norder: 2\n---\nhi\n"
	home := "---\ntitle: Home\norder: 1\n---\nhi\n"
	if _, err := svc.CreateDocument(ctx, "about.md", []byte(about)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateDocument(ctx, "home.md", []byte(home)); err != nil {
		t.Fatal(err)
	}

	pages, err := svc.ListPages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].Title != "Home" || pages[1].Title != "About" {
		t.Errorf("order = %q, %q", pages[0].Title, pages[1].Title)
	}
	if pages[1].Icon != "user" {
		t.Errorf("icon = %q", pages[1].Icon)
	}
}
