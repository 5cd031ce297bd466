// Package feed builds the Atom 1.0 representation of the post corpus.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// Site identifies the blog in feed metadata.
type Site struct {
	Title   string
	Author  string
	BaseURL string
}

// Entry is one post in the feed. HTML is the rendered body fragment.
type Entry struct {
	Slug       string
	Title      string
	Author     string
	Date       time.Time
	Categories []string
	HTML       string
}

type atomFeed struct {
	XMLName xml.Name   `xml:"feed"`
	Xmlns   string     `xml:"xmlns,attr"`
	Title   string     `xml:"title"`
	ID      string     `xml:"id"`
	Updated string     `xml:"updated"`
	Links   []atomLink `xml:"link"`
	Author  atomPerson `xml:"author"`
	Entries []atomEntry
}

type atomEntry struct {
	XMLName    xml.Name       `xml:"entry"`
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
	Link       atomLink       `xml:"link"`
	Author     *atomPerson    `xml:"author,omitempty"`
	Categories []atomCategory `xml:"category"`
	Content    atomContent    `xml:"content"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// Atom serializes the given entries (newest first is the caller's concern)
// into an Atom 1.0 document.
func Atom(site Site, entries []Entry) ([]byte, error) {
	base := strings.TrimRight(site.BaseURL, "/")

	updated := time.Time{}
	for _, e := range entries {
		if e.Date.After(updated) {
			updated = e.Date
		}
	}
	if updated.IsZero() {
		updated = time.Now()
	}

	f := atomFeed{
		Xmlns:   "http://www.w3.org/2005/Atom",
		Title:   site.Title,
		ID:      base + "/",
		Updated: updated.UTC().Format(time.RFC3339),
		Links: []atomLink{
			{Href: base + "/", Rel: "alternate", Type: "text/html"},
			{Href: base + "/feed.xml", Rel: "self", Type: "application/atom+xml"},
		},
		Author: atomPerson{Name: site.Author},
	}

	for _, e := range entries {
		url := base + "/" + e.Slug
		entry := atomEntry{
			Title:     e.Title,
			ID:        url,
			Updated:   e.Date.UTC().Format(time.RFC3339),
			Published: e.Date.UTC().Format(time.RFC3339),
			Link:      atomLink{Href: url, Rel: "alternate", Type: "text/html"},
			Content:   atomContent{Type: "html", Body: e.HTML},
		}
		if e.Author != "" && e.Author != site.Author {
			entry.Author = &atomPerson{Name: e.Author}
		}
		for _, c := range e.Categories {
			entry.Categories = append(entry.Categories, atomCategory{Term: c})
		}
		f.Entries = append(f.Entries, entry)
	}

	out, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: marshal atom: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
