package index

import (
	"log/slog"

	"github.com/starford/quire/internal/models"
)

// Listener keeps a DB current with session changes. Index failures are
// logged; the document store stays the source of truth and the next Sync
// repairs the index.
type Listener struct {
	db     *DB
	logger *slog.Logger
}

// NewListener returns a Listener writing to db.
func NewListener(db *DB, logger *slog.Logger) *Listener {
	return &Listener{db: db, logger: logger}
}

func (l *Listener) DocumentSaved(doc models.Document) {
	if err := indexDocument(l.db, doc); err != nil {
		l.logger.Warn("index: upsert failed", slog.String("id", doc.ID), slog.String("error", err.Error()))
	}
}

func (l *Listener) DocumentDeleted(id string) {
	if err := l.db.DeleteDocument(id); err != nil {
		l.logger.Warn("index: delete failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}
