package api

import (
	"github.com/ferrant/inkwell/internal/contentservice"
	"github.com/ferrant/inkwell/internal/models"
)

// CreateDocumentRequest is the request body for creating a content file.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"_drafts/new-post.md" validate:"required"`
	Content string `json:"content" example:"---\ntitle: New Post\n---\nBody" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a content file.
type UpdateDocumentRequest struct {
	Content string `json:"content" example:"---\ntitle: Updated\n---\nBody" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = contentservice.DocumentDetail

// PostListItem is a lightweight item in a list response (aliased from the domain layer).
type PostListItem = contentservice.PostListItem

// PageListItem is a standalone page item (aliased from the domain layer).
type PageListItem = contentservice.PageListItem

// PostListResponse wraps paginated post listings.
type PostListResponse struct {
	Posts []PostListItem `json:"posts" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// PageListResponse wraps the standalone page listing.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
}

// TermListResponse wraps a category or tag vocabulary.
type TermListResponse struct {
	Terms []models.Term `json:"terms" validate:"required"`
}

// ArchiveResponse wraps the month-by-month post counts.
type ArchiveResponse struct {
	Archive []models.ArchiveBucket `json:"archive" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path" example:"_posts/2019-03-02-borrow-checker.md" validate:"required"`
	Title   string `json:"title" example:"The Borrow Checker" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"diagram.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/diagram.png" validate:"required"`
}
