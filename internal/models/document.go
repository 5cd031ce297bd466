// Package models defines the domain types for Inkwell.
package models

import "time"

// Document kinds.
const (
	KindPost  = "post"
	KindPage  = "page"
	KindDraft = "draft"
)

// Document represents a parsed Markdown file in the content tree: a dated
// post under _posts/, a draft iteration under _drafts/, or a standalone page.
type Document struct {
	Path       string    `json:"path"`
	Kind       string    `json:"kind"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Author     string    `json:"author,omitempty"`
	Date       time.Time `json:"date,omitzero"`
	Categories []string  `json:"categories"`
	Tags       []string  `json:"tags"`
	Hidden     bool      `json:"hidden,omitempty"`
	PageIcon   string    `json:"icon,omitempty"`
	PageOrder  int       `json:"order,omitempty"`
	Body       string    `json:"body"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FileMetadata is a lightweight representation returned by storage listings.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Term is one entry of the category or tag vocabulary with its post count.
type Term struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ArchiveBucket is the number of posts published in one calendar month.
type ArchiveBucket struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}
