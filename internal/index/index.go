package index

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string) error
	DeleteDocument(id string) error
	GetDocument(id string) (*DocumentRow, error)
	ListDocuments(f ListFilter) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Categories() ([]CategoryCount, error)
	AllVersions() (map[string]int64, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
