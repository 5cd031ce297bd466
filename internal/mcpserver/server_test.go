package mcpserver

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/storage"
	"github.com/ferrant/inkwell/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()

	_, store := testutil.TestContent(t)
	db := testutil.TestDB(t)

	srv := New(store, db)
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_posts":
		result, err = srv.searchPosts(ctx, req)
	case "read_post":
		result, err = srv.readPost(ctx, req)
	case "create_draft":
		result, err = srv.createDraft(ctx, req)
	case "list_posts":
		result, err = srv.listPosts(ctx, req)
	case "get_post_contract":
		result, err = srv.getPostContract(ctx, req)
	case "upload_asset":
		result, err = srv.uploadAsset(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const draftContent = `---
title: WIP thoughts on profiling
tags:
  - profiling
---

Rough notes.
`

func TestCreateAndReadDraft(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_draft", map[string]interface{}{
		"path":    "_drafts/profiling-thoughts.md",
		"content": draftContent,
	})
	text := resultText(r)
	if text != "created: _drafts/profiling-thoughts.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_post", map[string]interface{}{
		"path": "_drafts/profiling-thoughts.md",
	})
	if resultText(r) != draftContent {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestCreateDraft_RejectsOutsideDraftsDir(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_draft", map[string]interface{}{
		"path":    "_posts/2024-01-15-sneaky.md",
		"content": draftContent,
	})
	if !r.IsError {
		t.Fatal("creating outside _drafts/ should fail")
	}
}

func TestCreateDraft_RejectsMalformedFrontmatter(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_draft", map[string]interface{}{
		"path":    "_drafts/bad.md",
		"content": "---\ntitle: [unclosed\n---\nbody\n",
	})
	if !r.IsError {
		t.Fatal("malformed front-matter should fail")
	}
}

func TestCreateDraft_RejectsDuplicate(t *testing.T) {
	srv, store := testServer(t)
	if err := store.Write("_drafts/dup.md", []byte(draftContent)); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "create_draft", map[string]interface{}{
		"path":    "_drafts/dup.md",
		"content": draftContent,
	})
	if !r.IsError {
		t.Fatal("duplicate draft should fail")
	}
}

func TestReadPostMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_post", map[string]interface{}{"path": "_posts/nope.md"})
	if !r.IsError {
		t.Fatal("missing post should be an error result")
	}
}

func TestListPosts(t *testing.T) {
	srv, store := testServer(t)

	post := `---
title: Hello world
date: 2024-01-15 09:30:00 +0100
categories:
  - programming
---

Hi.
`
	path := "_posts/2024-01-15-hello-world.md"
	if err := store.Write(path, []byte(post)); err != nil {
		t.Fatal(err)
	}
	row, body := index.BuildRow(path, []byte(post))
	if err := srv.db.UpsertDocument(row, body); err != nil {
		t.Fatal(err)
	}
	cr := callTool(t, srv, "create_draft", map[string]interface{}{
		"path":    "_drafts/ignored.md",
		"content": draftContent,
	})
	if cr.IsError {
		t.Fatalf("create_draft failed: %s", resultText(cr))
	}

	r := callTool(t, srv, "list_posts", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, path) {
		t.Errorf("list_posts missing published post: %q", text)
	}
	if !strings.Contains(text, "2024-01-15") {
		t.Errorf("list_posts missing date column: %q", text)
	}
	if strings.Contains(text, "_drafts/ignored.md") {
		t.Errorf("list_posts must not include drafts: %q", text)
	}
}

func TestListPosts_CategoryFilter(t *testing.T) {
	srv, _ := testServer(t)

	rustPost := `---
title: Rust post
date: 2024-02-01 10:00:00 +0000
categories:
  - rust
---
a
`
	goPost := `---
title: Go post
date: 2024-02-02 10:00:00 +0000
categories:
  - go
---
b
`
	for path, content := range map[string]string{
		"_posts/2024-02-01-rust-post.md": rustPost,
		"_posts/2024-02-02-go-post.md":   goPost,
	} {
		row, body := index.BuildRow(path, []byte(content))
		if err := srv.db.UpsertDocument(row, body); err != nil {
			t.Fatal(err)
		}
	}

	r := callTool(t, srv, "list_posts", map[string]interface{}{"category": "rust"})
	text := resultText(r)
	if !strings.Contains(text, "rust-post") || strings.Contains(text, "go-post") {
		t.Errorf("category filter result = %q", text)
	}
}

func TestGetPostContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_post_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "YAML front-matter is mandatory") {
		t.Errorf("contract missing mandatory front-matter rule: %q", text)
	}
	if !strings.Contains(text, "_drafts/") {
		t.Errorf("contract missing drafts convention: %q", text)
	}
}

func TestPostFormatResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readPostFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 resource content, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if tc.URI != "inkwell://post-format" {
		t.Errorf("URI = %q", tc.URI)
	}
	if tc.Text != PostFormatContract {
		t.Error("resource text does not match contract")
	}
}

// 1x1 transparent PNG.
var tinyPNG = func() string {
	raw := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}
	return base64.StdEncoding.EncodeToString(raw)
}()

func TestUploadAsset_DataURI(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "upload_asset", map[string]interface{}{
		"url":      "data:image/png;base64," + tinyPNG,
		"filename": "pixel.png",
	})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "/attachments/pixel.png") {
		t.Errorf("result = %q", resultText(r))
	}

	if _, err := store.Read("attachments/pixel.png"); err != nil {
		t.Errorf("attachment not stored: %v", err)
	}
}

func TestUploadAsset_RejectsExtensionMismatch(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "upload_asset", map[string]interface{}{
		"url":      "data:image/png;base64," + tinyPNG,
		"filename": "pixel.pdf",
	})
	if !r.IsError {
		t.Fatal("extension mismatch should fail magic byte validation")
	}
}

func TestUploadAsset_RejectsLoopbackURL(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "upload_asset", map[string]interface{}{
		"url": "http://127.0.0.1:9/secret.png",
	})
	if !r.IsError {
		t.Fatal("loopback URL should be blocked")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"my photo.png":     "my_photo.png",
		"normal.png":       "normal.png",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
