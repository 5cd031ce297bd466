package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ferrant/inkwell/internal/apperr"
	"github.com/ferrant/inkwell/internal/contentservice"
	"github.com/ferrant/inkwell/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// docPath extracts the document path from the URL (everything after the
// wildcard mount). Supports encoded slashes from OpenAPI clients
// (e.g. _posts%2F2019-03-02-post.md).
func docPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func boolParam(q url.Values, key string) bool {
	v, _ := strconv.ParseBool(q.Get(key))
	return v
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts with pagination and taxonomy filtering
//	@Tags			posts
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			tag			query		string	false	"Filter by tag"
//	@Param			hidden		query		bool	false	"Include hidden posts"
//	@Param			drafts		query		bool	false	"Include draft iterations"
//	@Param			sort		query		string	false	"Sort field"	Enums(date, title, path)
//	@Success		200			{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListPosts(r.Context(), index.PostQuery{
		Limit:         limit,
		Offset:        offset,
		Category:      q.Get("category"),
		Tag:           q.Get("tag"),
		IncludeHidden: boolParam(q, "hidden"),
		IncludeDrafts: boolParam(q, "drafts"),
		Sort:          q.Get("sort"),
	})
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": items,
		"total": total,
	})
}

// GetDocument handles GET /api/posts/*.
//
//	@Summary		Get a single document by path
//	@Tags			posts
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Param			format	query		string	false	"Body representation"	Enums(markdown, html)
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	withHTML := r.URL.Query().Get("format") == "html"
	doc, err := h.svc.GetDocument(r.Context(), path, withHTML)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/posts.
//
//	@Summary		Create a new content file
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	if !strings.HasSuffix(req.Path, ".md") {
		writeJSON(w, http.StatusBadRequest, errorBody("path must end with .md"))
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("document already exists"))
		} else {
			slog.Error("create document failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/posts/*.
//
//	@Summary		Update a content file with optimistic concurrency
//	@Tags			posts
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDocumentRequest	true	"Updated content"
//	@Success		200			{object}	DocumentDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update document failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/posts/*.
//
//	@Summary		Delete a content file
//	@Tags			posts
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := docPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		slog.Error("delete document failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPages handles GET /api/pages.
//
//	@Summary		List standalone pages in navigation order
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.ListPages(r.Context())
	if err != nil {
		slog.Error("list pages failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pages": pages,
	})
}

// Categories handles GET /api/categories.
//
//	@Summary		Category vocabulary with post counts
//	@Tags			taxonomy
//	@Produce		json
//	@Success		200	{object}	TermListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	terms, err := h.svc.Categories(r.Context())
	if err != nil {
		slog.Error("categories failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"terms": terms,
	})
}

// Tags handles GET /api/tags.
//
//	@Summary		Tag vocabulary with post counts
//	@Tags			taxonomy
//	@Produce		json
//	@Success		200	{object}	TermListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	terms, err := h.svc.Tags(r.Context())
	if err != nil {
		slog.Error("tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"terms": terms,
	})
}

// Archive handles GET /api/archive.
//
//	@Summary		Post counts per calendar month
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	ArchiveResponse
//	@Security		BearerAuth
//	@Router			/archive [get]
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Archive(r.Context())
	if err != nil {
		slog.Error("archive failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archive": buckets,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across the corpus
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Feed handles GET /feed.xml. Unauthenticated; the feed only ever contains
// published, non-hidden posts.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Feed(r.Context())
	if err != nil {
		slog.Error("feed failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	_, _ = w.Write(out)
}
