// Package frontmatter extracts YAML front-matter and Markdown bodies from
// blog content files and knows the filename conventions of the content tree.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ferrant/inkwell/internal/models"
)

// DateLayout is the canonical front-matter date format: an ISO-like local
// timestamp with a numeric UTC offset.
const DateLayout = "2006-01-02 15:04:05 -0700"

// dateLayouts are accepted in order; only DateLayout is canonical, the rest
// exist so that sloppy drafts still index (lint flags them).
var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// StringList decodes a YAML sequence of strings or a single scalar,
// preserving author order. Front-matter in the wild writes both
// `tags: rust` and `tags: [rust, memory]`.
type StringList []string

// UnmarshalYAML implements the yaml.v2 Unmarshaler used by the front-matter
// decoder.
func (l *StringList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var many []string
	if err := unmarshal(&many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := unmarshal(&one); err != nil {
		return err
	}
	one = strings.TrimSpace(one)
	if one == "" {
		*l = nil
		return nil
	}
	*l = StringList{one}
	return nil
}

// Meta is the typed front-matter envelope. Recognized keys are the union of
// the post schema (title, author, date, categories, tags, hidden) and the
// page schema (title, icon, order). Anything else lands in Custom.
type Meta struct {
	Title      string         `yaml:"title"`
	Author     string         `yaml:"author"`
	Date       string         `yaml:"date"`
	Categories StringList     `yaml:"categories"`
	Tags       StringList     `yaml:"tags"`
	Hidden     bool           `yaml:"hidden"`
	Icon       string         `yaml:"icon"`
	Order      int            `yaml:"order"`
	Custom     map[string]any `yaml:",inline"`
}

// PublishedAt parses the date field. The canonical layout is tried first.
func (m Meta) PublishedAt() (time.Time, error) {
	s := strings.TrimSpace(m.Date)
	if s == "" {
		return time.Time{}, fmt.Errorf("frontmatter: date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("frontmatter: unparseable date %q (want %q)", s, DateLayout)
}

// Validate checks the schema for the given document kind.
func (m Meta) Validate(kind string) error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.Order, validation.Min(0)),
	); err != nil {
		return err
	}
	if kind == models.KindPost {
		if _, err := m.PublishedAt(); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the output of parsing one content file.
type Result struct {
	Meta  Meta
	Body  string
	Title string

	// HasFrontmatter reports whether a front-matter block was present.
	// Malformed is set when a block was present but did not parse; the
	// whole file is then treated as body so the document still indexes.
	HasFrontmatter bool
	Malformed      bool
}

// Parse splits raw content into front-matter and Markdown body.
func Parse(data []byte) (*Result, error) {
	res := &Result{}

	trimmed := bytes.TrimLeft(data, "\n\r")
	if bytes.HasPrefix(trimmed, []byte("---")) {
		res.HasFrontmatter = true
		body, err := frontmatter.Parse(bytes.NewReader(data), &res.Meta)
		if err != nil {
			// Unparseable block: fall back to treating the file as body.
			res.Meta = Meta{}
			res.Malformed = true
			res.Body = string(data)
		} else {
			res.Body = string(body)
		}
	} else {
		res.Body = string(data)
	}

	res.Title = deriveTitle(res.Meta, res.Body)
	return res, nil
}

// deriveTitle returns the front-matter title if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(m Meta, body string) string {
	if m.Title != "" {
		return m.Title
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
