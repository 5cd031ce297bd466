package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ferrant/inkwell/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path       string
	Kind       string
	Slug       string
	Title      string
	Author     string
	Date       time.Time
	Categories []string
	Tags       []string
	Hidden     bool
	PageIcon   string
	PageOrder  int
	Checksum   string
	UpdatedAt  time.Time
}

// PostQuery filters and paginates post listings.
type PostQuery struct {
	Limit         int
	Offset        int
	Category      string
	Tag           string
	IncludeHidden bool
	IncludeDrafts bool
	Sort          string // "date" (default), "title", "path"
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// Dates are stored as RFC3339 UTC text so lexical ORDER BY matches
// chronological order. The authored offset lives in the file itself and is
// re-read on detail views.
func dateToCol(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func dateFromCol(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// UpsertDocument inserts or replaces a document, its FTS entry, and its
// taxonomy rows within a transaction.
func (db *DB) UpsertDocument(row DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	catsJSON, _ := json.Marshal(row.Categories)
	tagsJSON, _ := json.Marshal(row.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, kind, slug, title, author, date, categories, tags,
		                       hidden, page_icon, page_order, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind       = excluded.kind,
			slug       = excluded.slug,
			title      = excluded.title,
			author     = excluded.author,
			date       = excluded.date,
			categories = excluded.categories,
			tags       = excluded.tags,
			hidden     = excluded.hidden,
			page_icon  = excluded.page_icon,
			page_order = excluded.page_order,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Path, row.Kind, row.Slug, row.Title, row.Author, dateToCol(row.Date),
		string(catsJSON), string(tagsJSON), row.Hidden, row.PageIcon, row.PageOrder,
		row.Checksum, body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, row.Path, row.Title, body, append(append([]string{}, row.Categories...), row.Tags...)); err != nil {
		return err
	}

	// Replace taxonomy rows: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM taxonomy WHERE path = ?`, row.Path)
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO taxonomy (term, kind, path) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare taxonomy insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range row.Categories {
		if _, err := stmt.Exec(c, TermCategory, row.Path); err != nil {
			return fmt.Errorf("index: insert category: %w", err)
		}
	}
	for _, tg := range row.Tags {
		if _, err := stmt.Exec(tg, TermTag, row.Path); err != nil {
			return fmt.Errorf("index: insert tag: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry, and its taxonomy rows.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM taxonomy WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

const docColumns = `path, kind, slug, title, author, date, categories, tags,
	hidden, page_icon, page_order, checksum, updated_at`

func scanDocument(scan func(...any) error) (DocumentRow, error) {
	var (
		row            DocumentRow
		date           string
		catsJSON, tags string
	)
	err := scan(&row.Path, &row.Kind, &row.Slug, &row.Title, &row.Author, &date,
		&catsJSON, &tags, &row.Hidden, &row.PageIcon, &row.PageOrder,
		&row.Checksum, &row.UpdatedAt)
	if err != nil {
		return DocumentRow{}, err
	}
	row.Date = dateFromCol(date)
	_ = json.Unmarshal([]byte(catsJSON), &row.Categories)
	_ = json.Unmarshal([]byte(tags), &row.Tags)
	return row, nil
}

// GetDocument returns a single document row, or nil when absent.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	r := db.conn.QueryRow(`SELECT `+docColumns+` FROM documents WHERE path = ?`, path)
	row, err := scanDocument(r.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &row, nil
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// ListPosts returns paginated posts matching the query plus the total count
// before pagination.
func (db *DB) ListPosts(q PostQuery) ([]DocumentRow, int, error) {
	where := []string{}
	args := []any{}

	if q.IncludeDrafts {
		where = append(where, `kind IN ('post', 'draft')`)
	} else {
		where = append(where, `kind = 'post'`)
	}
	if !q.IncludeHidden {
		where = append(where, `hidden = 0`)
	}
	if q.Category != "" {
		where = append(where, `EXISTS (SELECT 1 FROM taxonomy t WHERE t.path = documents.path AND t.kind = 'category' AND t.term = ?)`)
		args = append(args, q.Category)
	}
	if q.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM taxonomy t WHERE t.path = documents.path AND t.kind = 'tag' AND t.term = ?)`)
		args = append(args, q.Tag)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	order := `date DESC, path ASC`
	switch q.Sort {
	case "title":
		order = `title ASC, path ASC`
	case "path":
		order = `path ASC`
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	args = append(args, limit, q.Offset)

	rows, err := db.conn.Query(`SELECT `+docColumns+` FROM documents WHERE `+cond+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		row, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// ListPages returns all pages ordered by their front-matter order key.
func (db *DB) ListPages() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`SELECT ` + docColumns +
		` FROM documents WHERE kind = 'page' ORDER BY page_order ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		row, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Terms returns the category or tag vocabulary with per-term counts of
// published, non-hidden posts.
func (db *DB) Terms(kind string) ([]models.Term, error) {
	rows, err := db.conn.Query(`
		SELECT t.term, count(*)
		FROM taxonomy t
		JOIN documents d ON d.path = t.path
		WHERE t.kind = ? AND d.kind = 'post' AND d.hidden = 0
		GROUP BY t.term
		ORDER BY count(*) DESC, t.term ASC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("index: terms: %w", err)
	}
	defer rows.Close()

	var out []models.Term
	for rows.Next() {
		var t models.Term
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Archive returns post counts per calendar month, newest first.
func (db *DB) Archive() ([]models.ArchiveBucket, error) {
	rows, err := db.conn.Query(`
		SELECT strftime('%Y', date), strftime('%m', date), count(*)
		FROM documents
		WHERE kind = 'post' AND hidden = 0 AND date != ''
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2 DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: archive: %w", err)
	}
	defer rows.Close()

	var out []models.ArchiveBucket
	for rows.Next() {
		var b models.ArchiveBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns a path to checksum map for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
