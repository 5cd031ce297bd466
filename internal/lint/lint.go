// Package lint checks the content corpus for well-formedness: parseable
// front-matter, schema-complete posts, canonical dates that agree with the
// filename convention, consistent draft copies, and resolvable image assets.
package lint

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ferrant/inkwell/internal/frontmatter"
	"github.com/ferrant/inkwell/internal/models"
	"github.com/ferrant/inkwell/internal/storage"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one problem detected in a content file.
type Finding struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report aggregates findings over a corpus walk.
type Report struct {
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding is error-level.
func (r *Report) HasErrors() bool {
	return r.Errors() > 0
}

// Errors returns the number of error-level findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-level findings.
func (r *Report) Warnings() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

func (r *Report) add(path string, sev Severity, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Path: path, Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// recognizedKeys is the front-matter schema: posts use title, author, date,
// categories, tags, hidden; pages use title, icon, order.
var recognizedKeys = map[string]struct{}{
	"title": {}, "author": {}, "date": {}, "categories": {},
	"tags": {}, "hidden": {}, "icon": {}, "order": {},
}

var imageRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)`)

// Run walks every Markdown file in the store and returns a report.
func Run(store storage.Provider) (*Report, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, err
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })

	report := &Report{}

	// title → first seen (date, path), for draft-consistency checks.
	titles := map[string]titleSeen{}

	for _, m := range metas {
		report.Checked++
		data, err := store.Read(m.Path)
		if err != nil {
			report.add(m.Path, SeverityError, "unreadable: %v", err)
			continue
		}

		res, _ := frontmatter.Parse(data)
		kind := frontmatter.KindOf(m.Path)

		if !res.HasFrontmatter {
			report.add(m.Path, SeverityError, "missing front-matter block")
			continue
		}
		if res.Malformed {
			report.add(m.Path, SeverityError, "front-matter does not parse as YAML")
			continue
		}

		if err := res.Meta.Validate(kind); err != nil {
			report.add(m.Path, SeverityError, "schema: %v", err)
		}

		checkDate(report, m.Path, kind, res.Meta, titles)

		for key := range res.Meta.Custom {
			report.add(m.Path, SeverityWarning, "unrecognized front-matter key %q", key)
		}

		checkImages(report, store, m.Path, res.Body)
	}

	return report, nil
}

// titleSeen remembers where a title was first encountered.
type titleSeen struct {
	date time.Time
	path string
}

func checkDate(report *Report, relPath, kind string, meta frontmatter.Meta, titles map[string]titleSeen) {
	if meta.Date == "" {
		return
	}
	date, err := meta.PublishedAt()
	if err != nil {
		report.add(relPath, SeverityError, "%v", err)
		return
	}
	if _, strictErr := time.Parse(frontmatter.DateLayout, strings.TrimSpace(meta.Date)); strictErr != nil {
		report.add(relPath, SeverityWarning, "date %q not in canonical %q form", meta.Date, frontmatter.DateLayout)
	}

	// Filename-embedded dates are lower bounds: a post published at
	// 2019-03-02T10:00+03:00 lives in 2019-03-02-slug.md, and later
	// revisions may only move the timestamp forward.
	if kind == models.KindPost {
		if fd, ok := frontmatter.FilenameDate(relPath); ok {
			y, mo, d := date.Date()
			day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
			if day.Before(fd) {
				report.add(relPath, SeverityError,
					"front-matter date %s precedes filename date %s",
					date.Format("2006-01-02"), fd.Format("2006-01-02"))
			}
		}
	}

	// Draft copies of the same post must agree on (title, date).
	if meta.Title != "" {
		if seen, ok := titles[meta.Title]; ok {
			if !seen.date.Equal(date) {
				report.add(relPath, SeverityError,
					"title %q also used by %s with a different date (%s vs %s)",
					meta.Title, seen.path,
					date.Format(frontmatter.DateLayout), seen.date.Format(frontmatter.DateLayout))
			}
		} else {
			titles[meta.Title] = titleSeen{date: date, path: relPath}
		}
	}
}

// checkImages verifies that relative image references resolve to files under
// the content root. Remote URLs are ignored.
func checkImages(report *Report, store storage.Provider, relPath, body string) {
	dir := path.Dir(relPath)
	for _, m := range imageRe.FindAllStringSubmatch(body, -1) {
		ref := m[1]
		if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") {
			continue
		}
		ref = strings.TrimPrefix(ref, "/")

		candidates := []string{path.Clean(ref)}
		if dir != "." {
			candidates = append(candidates, path.Clean(path.Join(dir, ref)))
		}

		found := false
		for _, c := range candidates {
			if _, err := store.Read(c); err == nil {
				found = true
				break
			}
		}
		if !found {
			report.add(relPath, SeverityWarning, "image %q not found under content root", m[1])
		}
	}
}
