package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/quire/internal/apperr"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	IsFavorite bool      `json:"isFavorite"`
	WordCount  int       `json:"wordCount"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// CategoryCount is a category and the number of documents in it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Sort orders for ListDocuments.
const (
	SortUpdated = "updated"
	SortTitle   = "title"
)

// ListFilter selects and pages documents.
type ListFilter struct {
	Category  string
	Favorites bool
	Sort      string
	Limit     int
	Offset    int
}

// UpsertDocument inserts or replaces a document and its FTS entry within a
// transaction. body is the plain text of the document.
func (db *DB) UpsertDocument(d DocumentRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (id, title, category, is_favorite, body, word_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			category    = excluded.category,
			is_favorite = excluded.is_favorite,
			body        = excluded.body,
			word_count  = excluded.word_count,
			updated_at  = excluded.updated_at
	`, d.ID, d.Title, d.Category, d.IsFavorite, body, d.WordCount, d.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.ID, d.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDocument removes a document and its FTS entry.
func (db *DB) DeleteDocument(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetDocument returns the indexed row for id, or apperr.ErrNotFound.
func (db *DB) GetDocument(id string) (*DocumentRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, category, is_favorite, word_count, updated_at
		FROM documents WHERE id = ?`, id)
	d, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &d, nil
}

// ListDocuments returns one page of documents matching f and the total
// number of matches.
func (db *DB) ListDocuments(f ListFilter) ([]DocumentRow, int, error) {
	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.Favorites {
		where = append(where, "is_favorite = 1")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	order := " ORDER BY updated_at DESC, id"
	if f.Sort == SortTitle {
		order = " ORDER BY title COLLATE NOCASE, id"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(f.Offset, 0)

	rows, err := db.conn.Query(`
		SELECT id, title, category, is_favorite, word_count, updated_at
		FROM documents`+cond+order+` LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []DocumentRow{}
	for rows.Next() {
		d, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Categories returns every category in use with its document count,
// ordered by name.
func (db *DB) Categories() ([]CategoryCount, error) {
	rows, err := db.conn.Query(`
		SELECT category, count(*) FROM documents
		GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("index: categories: %w", err)
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllVersions returns the indexed updated_at (unix nanoseconds) of every
// document, keyed by id.
func (db *DB) AllVersions() (map[string]int64, error) {
	rows, err := db.conn.Query(`SELECT id, updated_at FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all versions: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var id string
		var v int64
		if err := rows.Scan(&id, &v); err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (DocumentRow, error) {
	var d DocumentRow
	var updated int64
	if err := s.Scan(&d.ID, &d.Title, &d.Category, &d.IsFavorite, &d.WordCount, &updated); err != nil {
		return DocumentRow{}, err
	}
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return d, nil
}
