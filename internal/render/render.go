// Package render converts Markdown bodies to HTML fragments.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer wraps a configured goldmark engine. It is stateless and safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer with GFM tables/strikethrough, autolinks, task
// lists, and auto heading IDs. Fenced code blocks come through as
// <pre><code class="language-..."> untouched; the snippets in post bodies
// are illustration, not executable content.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
				extension.TaskList,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// HTML renders a Markdown body into an HTML fragment.
func (r *Renderer) HTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render: convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
