// Package models defines the domain types for Quire.
package models

import "time"

// DefaultCategory is the category assigned to new documents.
const DefaultCategory = "General"

// Document is a single editable document record.
//
// WordCount and CharCount are derived from Content and are recomputed on
// every save; they are never edited directly.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	WordCount  int       `json:"wordCount"`
	CharCount  int       `json:"charCount"`
	IsFavorite bool      `json:"isFavorite"`
	Category   string    `json:"category"`
}

// Selection is a pair of character offsets into the current content.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Collapsed reports whether the selection is a plain cursor.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}
