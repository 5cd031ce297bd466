package index

import "github.com/ferrant/inkwell/internal/models"

// DocumentIndex defines the interface for content indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(row DocumentRow, body string) error
	DeleteDocument(path string) error
	GetDocument(path string) (*DocumentRow, error)
	GetChecksum(path string) (string, error)
	ListPosts(q PostQuery) ([]DocumentRow, int, error)
	ListPages() ([]DocumentRow, error)
	Terms(kind string) ([]models.Term, error)
	Archive() ([]models.ArchiveBucket, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Taxonomy kinds stored in the taxonomy table.
const (
	TermCategory = "category"
	TermTag      = "tag"
)

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
