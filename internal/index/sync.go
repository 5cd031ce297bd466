package index

import (
	"log/slog"
	"time"

	"github.com/ferrant/inkwell/internal/checksum"
	"github.com/ferrant/inkwell/internal/frontmatter"
	"github.com/ferrant/inkwell/internal/storage"
)

// BuildRow parses raw content and assembles the index row for a file.
// Posts with a missing or unparseable front-matter date fall back to the
// date embedded in the filename so they still sort chronologically.
func BuildRow(path string, data []byte) (DocumentRow, string) {
	res, _ := frontmatter.Parse(data)

	kind := frontmatter.KindOf(path)
	date, err := res.Meta.PublishedAt()
	if err != nil {
		if fd, ok := frontmatter.FilenameDate(path); ok {
			date = fd
		}
	}

	row := DocumentRow{
		Path:       path,
		Kind:       kind,
		Slug:       frontmatter.SlugOf(path),
		Title:      res.Title,
		Author:     res.Meta.Author,
		Date:       date,
		Categories: res.Meta.Categories,
		Tags:       res.Meta.Tags,
		Hidden:     res.Meta.Hidden,
		PageIcon:   res.Meta.Icon,
		PageOrder:  res.Meta.Order,
		Checksum:   checksum.Sum(data),
		UpdatedAt:  time.Now(),
	}
	return row, res.Body
}

// Sync walks the content tree and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	row, body := BuildRow(path, data)
	return db.UpsertDocument(row, body)
}
