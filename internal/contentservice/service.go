// Package contentservice coordinates storage, index, rendering, and feed
// generation for the blog corpus.
package contentservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/ferrant/inkwell/internal/apperr"
	"github.com/ferrant/inkwell/internal/checksum"
	"github.com/ferrant/inkwell/internal/feed"
	"github.com/ferrant/inkwell/internal/frontmatter"
	"github.com/ferrant/inkwell/internal/index"
	"github.com/ferrant/inkwell/internal/models"
	"github.com/ferrant/inkwell/internal/render"
	"github.com/ferrant/inkwell/internal/storage"
)

// DocumentDetail is the full representation of one content file: the parsed
// domain document plus the raw source and, on demand, the rendered body.
type DocumentDetail struct {
	models.Document

	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

// PostListItem is a lightweight item in a list response.
type PostListItem struct {
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Author     string    `json:"author,omitempty"`
	Date       time.Time `json:"date,omitzero"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Hidden     bool      `json:"hidden,omitempty"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PageListItem is one standalone page in a list response.
type PageListItem struct {
	Path  string `json:"path"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Order int    `json:"order"`
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	renderer *render.Renderer
	site     feed.Site
	feedSize int
}

// NewService creates a new content service.
func NewService(store storage.Provider, db *index.DB, site feed.Site, feedSize int) *Service {
	if feedSize <= 0 {
		feedSize = 20
	}
	return &Service{
		store:    store,
		db:       db,
		renderer: render.New(),
		site:     site,
		feedSize: feedSize,
	}
}

// GetDocument reads a file from storage and parses it. When withHTML is set
// the Markdown body is also rendered to an HTML fragment.
func (s *Service) GetDocument(_ context.Context, path string, withHTML bool) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(path, data, withHTML)
}

// CreateDocument writes a new file and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content, false)
}

// UpdateDocument writes updated content with optimistic concurrency.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildDetail(path, content, false)
}

// DeleteDocument removes a file from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListPosts returns paginated posts matching the query.
func (s *Service) ListPosts(_ context.Context, q index.PostQuery) ([]PostListItem, int, error) {
	rows, total, err := s.db.ListPosts(q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PostListItem, len(rows))
	for i, r := range rows {
		items[i] = PostListItem{
			Path:       r.Path,
			Kind:       r.Kind,
			Slug:       r.Slug,
			Title:      r.Title,
			Author:     r.Author,
			Date:       r.Date,
			Categories: nonNilSlice(r.Categories),
			Tags:       nonNilSlice(r.Tags),
			Hidden:     r.Hidden,
			Checksum:   r.Checksum,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// ListPages returns all standalone pages in navigation order.
func (s *Service) ListPages(_ context.Context) ([]PageListItem, error) {
	rows, err := s.db.ListPages()
	if err != nil {
		return nil, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:  r.Path,
			Slug:  r.Slug,
			Title: r.Title,
			Icon:  r.PageIcon,
			Order: r.PageOrder,
		}
	}
	return items, nil
}

// Categories returns the category vocabulary with post counts.
func (s *Service) Categories(_ context.Context) ([]models.Term, error) {
	return s.db.Terms(index.TermCategory)
}

// Tags returns the tag vocabulary with post counts.
func (s *Service) Tags(_ context.Context) ([]models.Term, error) {
	return s.db.Terms(index.TermTag)
}

// Archive returns post counts per calendar month, newest first.
func (s *Service) Archive(_ context.Context) ([]models.ArchiveBucket, error) {
	return s.db.Archive()
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Feed builds the Atom document for the newest published posts. Bodies are
// re-read from storage so the rendered HTML and the authored timezone offset
// match the files exactly.
func (s *Service) Feed(_ context.Context) ([]byte, error) {
	rows, _, err := s.db.ListPosts(index.PostQuery{Limit: s.feedSize})
	if err != nil {
		return nil, err
	}

	entries := make([]feed.Entry, 0, len(rows))
	for _, r := range rows {
		entry := feed.Entry{
			Slug:       r.Slug,
			Title:      r.Title,
			Author:     r.Author,
			Date:       r.Date,
			Categories: r.Categories,
		}
		if data, readErr := s.store.Read(r.Path); readErr == nil {
			res, _ := frontmatter.Parse(data)
			if at, dateErr := res.Meta.PublishedAt(); dateErr == nil {
				entry.Date = at
			}
			if html, renderErr := s.renderer.HTML([]byte(res.Body)); renderErr == nil {
				entry.HTML = string(html)
			}
		}
		entries = append(entries, entry)
	}

	return feed.Atom(s.site, entries)
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher callers can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	row, body := index.BuildRow(path, data)
	return s.db.UpsertDocument(row, body)
}

// buildDetail constructs a DocumentDetail from raw data without re-reading
// the file.
func (s *Service) buildDetail(path string, data []byte, withHTML bool) (*DocumentDetail, error) {
	res, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}

	date, dateErr := res.Meta.PublishedAt()
	if dateErr != nil {
		if fd, ok := frontmatter.FilenameDate(path); ok {
			date = fd
		}
	}

	detail := &DocumentDetail{
		Document: models.Document{
			Path:       path,
			Kind:       frontmatter.KindOf(path),
			Slug:       frontmatter.SlugOf(path),
			Title:      res.Title,
			Author:     res.Meta.Author,
			Date:       date,
			Categories: nonNilSlice([]string(res.Meta.Categories)),
			Tags:       nonNilSlice([]string(res.Meta.Tags)),
			Hidden:     res.Meta.Hidden,
			PageIcon:   res.Meta.Icon,
			PageOrder:  res.Meta.Order,
			Body:       res.Body,
			Checksum:   checksum.Sum(data),
			UpdatedAt:  time.Now(),
		},
		Content: string(data),
	}

	if withHTML {
		html, err := s.renderer.HTML([]byte(res.Body))
		if err != nil {
			return nil, err
		}
		detail.HTML = string(html)
	}

	return detail, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
