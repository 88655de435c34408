// Package docstore persists Document records and the current-document
// pointer on a key-value backend.
//
// The store never reports storage failures to its callers: corrupt data
// reads as an empty collection and failed writes are logged and dropped.
// Losing a write is preferred over interrupting an editing session.
package docstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/storage"
)

// Backend keys.
const (
	DocumentsKey = "quire.documents"
	CurrentKey   = "quire.current-document"
)

// Store is the durable collection of documents.
type Store struct {
	backend storage.Backend
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	lastID int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger storage failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store on top of backend.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll returns every stored document in stored order. It never returns nil.
func (s *Store) GetAll() []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the document with the given id.
func (s *Store) Get(id string) (models.Document, bool) {
	for _, d := range s.GetAll() {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

// Save inserts doc or replaces the stored document with the same id in place.
func (s *Store) Save(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.load()
	replaced := false
	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		docs = append(docs, doc)
	}
	s.store(docs)
}

// Delete removes the document with the given id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.load()
	out := docs[:0]
	for _, d := range docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	if len(out) == len(docs) {
		return
	}
	s.store(out)
}

// CurrentID returns the id of the document the session resumes into. The id
// may refer to a document that no longer exists.
func (s *Store) CurrentID() (string, bool) {
	v, ok, err := s.backend.Get(CurrentKey)
	if err != nil {
		s.logger.Warn("docstore: read current id failed", slog.String("error", err.Error()))
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetCurrentID updates the current-document pointer. An empty id clears it.
func (s *Store) SetCurrentID(id string) {
	var err error
	if id == "" {
		err = s.backend.Remove(CurrentKey)
	} else {
		err = s.backend.Set(CurrentKey, id)
	}
	if err != nil {
		s.logger.Error("docstore: write current id failed",
			slog.String("id", id), slog.String("error", err.Error()))
	}
}

// CreateNew allocates a document with a fresh id and default fields.
// The document is not persisted.
func (s *Store) CreateNew() models.Document {
	now := s.now()
	return models.Document{
		ID:        s.newID(now),
		Title:     "Document " + now.Format("1/2/2006"),
		CreatedAt: now,
		UpdatedAt: now,
		Category:  models.DefaultCategory,
	}
}

// RecomputeStats returns a copy of doc with derived counts matching its
// content and UpdatedAt set to now.
func (s *Store) RecomputeStats(doc models.Document) models.Document {
	doc.WordCount = parser.WordCount(doc.Content)
	doc.CharCount = parser.CharCount(doc.Content)
	doc.UpdatedAt = s.now()
	return doc
}

// newID returns a time-ordered UUID. If the generator fails, a millisecond
// timestamp that is strictly greater than the previous one is used instead.
func (s *Store) newID(now time.Time) string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := now.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// load must be called with mu held.
func (s *Store) load() []models.Document {
	raw, ok, err := s.backend.Get(DocumentsKey)
	if err != nil {
		s.logger.Warn("docstore: read documents failed", slog.String("error", err.Error()))
		return []models.Document{}
	}
	if !ok || raw == "" {
		return []models.Document{}
	}
	var docs []models.Document
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		s.logger.Warn("docstore: corrupt documents, ignoring", slog.String("error", err.Error()))
		return []models.Document{}
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs
}

// store must be called with mu held.
func (s *Store) store(docs []models.Document) {
	if err := s.write(docs); err != nil {
		s.logger.Error("docstore: write documents failed",
			slog.Int("count", len(docs)), slog.String("error", err.Error()))
	}
}

func (s *Store) write(docs []models.Document) error {
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("docstore: encode: %w", err)
	}
	return s.backend.Set(DocumentsKey, string(data))
}
