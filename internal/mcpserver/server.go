// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Inkwell tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ferrant/inkwell/internal/frontmatter"
	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/storage"
)

// Server wraps the MCP server with Inkwell tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *index.DB
}

// New creates a new MCP server with all Inkwell tools registered.
func New(store storage.Provider, db *index.DB) *Server {
	s := &Server{store: store, db: db}

	s.mcp = server.NewMCPServer(
		"Inkwell",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post and page content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the raw Markdown source of a post or page, including its front-matter."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. _posts/2024-01-15-my-post.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create a new draft post under _drafts/. "+
			"Content MUST follow the canonical post format (YAML front-matter with title, "+
			"author, date, categories, tags; Markdown body). Read the contract first via "+
			"the get_post_contract tool or the inkwell://post-format resource. Drafts are "+
			"published later by renaming into _posts/ with a date-prefixed filename."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the draft (must be under _drafts/ and end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Inkwell post format contract")),
	), s.createDraft)

	s.mcp.AddTool(mcp.NewTool("get_post_contract",
		mcp.WithDescription("Returns the canonical Inkwell post format contract. "+
			"Call this before creating or updating posts to ensure correct structure."),
	), s.getPostContract)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts, most recent first. Returns paths, titles and dates."),
		mcp.WithString("category", mcp.Description("Optional category to filter by")),
		mcp.WithString("tag", mcp.Description("Optional tag to filter by")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image or PDF from a URL (or decode a base64 data URI) "+
			"and store it in the shared attachments/ directory. Returns a markdownImage field "+
			"ready to paste into a post body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or base64 data URI of the asset")),
		mcp.WithString("filename", mcp.Description("Optional target filename (extension must match content)")),
	), s.uploadAsset)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource("inkwell://post-format", "Post Format Contract",
			mcp.WithResourceDescription("Canonical Markdown post format that all posts and pages must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !strings.HasPrefix(path, frontmatter.DraftsDir+"/") {
		return mcp.NewToolResultError(fmt.Sprintf("drafts must live under %s/: %s", frontmatter.DraftsDir, path)), nil
	}
	if !strings.HasSuffix(path, ".md") {
		return mcp.NewToolResultError(fmt.Sprintf("draft path must end with .md: %s", path)), nil
	}

	// Check existence.
	if _, readErr := s.store.Read(path); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("draft already exists: %s", path)), nil
	}

	data := []byte(content)
	res, _ := frontmatter.Parse(data)
	if res.Malformed {
		return mcp.NewToolResultError("front-matter is not valid YAML; fix it and retry (see get_post_contract)"), nil
	}
	if err := res.Meta.Validate(frontmatter.KindOf(path)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("front-matter invalid: %v", err)), nil
	}

	if err := s.store.Write(path, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, body := index.BuildRow(path, data)
	_ = s.db.UpsertDocument(row, body)

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := index.PostQuery{Limit: 100}
	if v, err := req.RequireString("category"); err == nil {
		q.Category = v
	}
	if v, err := req.RequireString("tag"); err == nil {
		q.Tag = v
	}

	rows, _, err := s.db.ListPosts(q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", r.Path, r.Date.Format("2006-01-02"), r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getPostContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "inkwell://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
