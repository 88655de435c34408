package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/lineindex"
	"github.com/starford/quire/internal/models"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Template string `json:"template,omitempty" example:"meeting-notes"`
}

// Validate implements validation.Validatable.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Template, validation.RuneLength(0, 100)),
	)
}

// FavoriteRequest is the request body for PUT /documents/{id}/favorite.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

// Validate implements validation.Validatable.
func (r FavoriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Favorite, validation.NotNil),
	)
}

// CategoryRequest is the request body for PUT /documents/{id}/category. An
// empty category resets the document to the default one.
type CategoryRequest struct {
	Category string `json:"category" example:"Work"`
}

// Validate implements validation.Validatable.
func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category, validation.RuneLength(0, 100)),
	)
}

// SwitchRequest is the request body for POST /session/switch.
type SwitchRequest struct {
	ID string `json:"id" validate:"required"`
}

// Validate implements validation.Validatable.
func (r SwitchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
	)
}

// ContentRequest is the request body for PUT /session/content. Empty content
// is allowed; a missing field is not.
type ContentRequest struct {
	Content *string `json:"content" validate:"required"`
}

// Validate implements validation.Validatable.
func (r ContentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NotNil),
	)
}

// TitleRequest is the request body for PUT /session/title.
type TitleRequest struct {
	Title string `json:"title" example:"Quarterly report"`
}

// Validate implements validation.Validatable.
func (r TitleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.RuneLength(0, 500)),
	)
}

// SelectionRequest is the request body for PUT /session/selection.
type SelectionRequest struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate implements validation.Validatable.
func (r SelectionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Start, validation.Min(0)),
		validation.Field(&r.End, validation.Min(0)),
	)
}

// CursorRequest is the request body for PUT /session/cursor.
type CursorRequest struct {
	Line   int `json:"line" validate:"required"`
	Column int `json:"column" validate:"required"`
}

// Validate implements validation.Validatable.
func (r CursorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Line, validation.Required, validation.Min(1)),
		validation.Field(&r.Column, validation.Required, validation.Min(1)),
	)
}

// Line edit operations accepted by POST /session/lines/{op}.
const (
	LineOpInsert = "insert"
	LineOpDelete = "delete"
	LineOpUpdate = "update"
	LineOpSplit  = "split"
	LineOpMerge  = "merge"
)

// LineEditRequest is the request body for POST /session/lines/{op}. Line is
// the target line; for insert it is the line to insert after (0 = top).
// Offset is only used by split, Content by insert and update.
type LineEditRequest struct {
	Line    int    `json:"line"`
	Content string `json:"content,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

func (r LineEditRequest) validateFor(op string) error {
	minLine := 1
	if op == LineOpInsert {
		minLine = 0
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Line, validation.Min(minLine)),
		validation.Field(&r.Offset, validation.Min(0)),
	)
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []index.DocumentRow `json:"documents" validate:"required"`
	Total     int                 `json:"total" example:"42" validate:"required"`
}

// DocumentResponse is a single document.
type DocumentResponse = models.Document

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// CategoriesResponse wraps category counts.
type CategoriesResponse struct {
	Categories []index.CategoryCount `json:"categories" validate:"required"`
}

// LinesResponse is the derived line list of the current document.
type LinesResponse struct {
	Lines []lineindex.Line `json:"lines" validate:"required"`
}

// LineEditResponse reports whether a line edit changed the buffer.
type LineEditResponse struct {
	Applied bool             `json:"applied"`
	Lines   []lineindex.Line `json:"lines"`
}

// CursorResponse is the cursor as a 1-based line and column.
type CursorResponse struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}
