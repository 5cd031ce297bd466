package frontmatter

import (
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/ferrant/inkwell/internal/models"
)

// Directories with special meaning inside the content tree.
const (
	PostsDir  = "_posts"
	DraftsDir = "_drafts"
)

var postNameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.md$`)

// KindOf classifies a content-relative path: files under _posts/ are posts,
// files under _drafts/ are drafts, everything else is a page.
func KindOf(rel string) string {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	switch {
	case rel == PostsDir || strings.HasPrefix(rel, PostsDir+"/"):
		return models.KindPost
	case rel == DraftsDir || strings.HasPrefix(rel, DraftsDir+"/"):
		return models.KindDraft
	default:
		return models.KindPage
	}
}

// FilenameDate extracts the date embedded in a post filename
// (_posts/2019-03-02-some-slug.md). ok is false when the name does not
// carry a date prefix.
func FilenameDate(rel string) (t time.Time, ok bool) {
	m := postNameRe.FindStringSubmatch(path.Base(strings.ReplaceAll(rel, "\\", "/")))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SlugOf derives the URL slug from a content-relative path: the filename
// stem, with the date prefix stripped for dated posts.
func SlugOf(rel string) string {
	base := path.Base(strings.ReplaceAll(rel, "\\", "/"))
	if m := postNameRe.FindStringSubmatch(base); m != nil {
		return m[2]
	}
	return strings.TrimSuffix(base, ".md")
}
