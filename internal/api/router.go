package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ferrant/inkwell/internal/contentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// contentRoot is used to resolve the attachments directory.
func NewRouter(svc *contentservice.Service, authEnabled bool, token string, sseHandler http.Handler, contentRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(contentRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Posts and drafts CRUD.
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreateDocument)
	r.Get("/posts/*", h.GetDocument)
	r.Put("/posts/*", h.UpdateDocument)
	r.Delete("/posts/*", h.DeleteDocument)

	// Standalone pages.
	r.Get("/pages", h.ListPages)

	// Taxonomy and archive.
	r.Get("/categories", h.Categories)
	r.Get("/tags", h.Tags)
	r.Get("/archive", h.Archive)

	// Search.
	r.Get("/search", h.Search)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
