package index

import (
	"log/slog"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
)

// Sync brings the index up to date with docs:
//   - new/changed documents (by UpdatedAt) are upserted
//   - documents no longer present are deleted from the index
func Sync(db *DB, docs []models.Document, logger *slog.Logger) error {
	versions, err := db.AllVersions()
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		present[d.ID] = struct{}{}

		if v, ok := versions[d.ID]; ok && v == d.UpdatedAt.UnixNano() {
			continue
		}
		if err := indexDocument(db, d); err != nil {
			logger.Warn("sync: index failed", slog.String("id", d.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", d.ID))
		}
	}

	// Remove stale entries.
	for id := range versions {
		if _, ok := present[id]; !ok {
			if err := db.DeleteDocument(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}
	return nil
}

// indexDocument extracts the plain text of d and upserts it into the DB.
func indexDocument(db *DB, d models.Document) error {
	return db.UpsertDocument(RowOf(d), parser.PlainText(d.Content))
}

// RowOf converts a document into its index row.
func RowOf(d models.Document) DocumentRow {
	return DocumentRow{
		ID:         d.ID,
		Title:      d.Title,
		Category:   d.Category,
		IsFavorite: d.IsFavorite,
		WordCount:  d.WordCount,
		UpdatedAt:  d.UpdatedAt,
	}
}
