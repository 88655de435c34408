// Package editor coordinates the session controller, the search index and
// the template set for the transport layers (HTTP API and MCP tools).
package editor

import (
	"fmt"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/lineindex"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/session"
	"github.com/starford/quire/internal/templates"
)

// Service is the transport-facing facade over a session. It turns the
// controller's boolean outcomes into apperr errors.
type Service struct {
	session   *session.Controller
	index     index.DocumentIndex
	templates templates.Provider
}

// New creates a Service. idx may be nil, in which case listing and search
// run over the session's cached documents.
func New(ctrl *session.Controller, idx index.DocumentIndex, tpls templates.Provider) *Service {
	if tpls == nil {
		tpls = templates.Builtin()
	}
	return &Service{session: ctrl, index: idx, templates: tpls}
}

// Snapshot is the session state plus the checksum of the current content,
// usable as an If-Match precondition for content updates.
type Snapshot struct {
	session.State
	Checksum string `json:"checksum,omitempty"`
}

// State returns the current session snapshot.
func (s *Service) State() Snapshot {
	st := s.session.State()
	snap := Snapshot{State: st}
	if st.CurrentDocument != nil {
		snap.Checksum = checksum.String(st.CurrentDocument.Content)
	}
	return snap
}

// Templates lists the available templates.
func (s *Service) Templates() []templates.Template {
	return s.templates.Templates()
}

// GetDocument returns the document with the given id.
func (s *Service) GetDocument(id string) (models.Document, error) {
	doc, ok := s.session.Document(id)
	if !ok {
		return models.Document{}, fmt.Errorf("document %q: %w", id, apperr.ErrNotFound)
	}
	return doc, nil
}

// CreateDocument creates and opens a document, optionally from the named
// template.
func (s *Service) CreateDocument(templateName string) (models.Document, error) {
	return s.CreateDocumentWith(templateName, templates.Template{})
}

// CreateDocumentWith creates and opens a document from the named template,
// if any, with the non-empty title, category and content of overlay taking
// precedence. The document starts with an empty history.
func (s *Service) CreateDocumentWith(templateName string, overlay templates.Template) (models.Document, error) {
	var tpl templates.Template
	if templateName != "" {
		var ok bool
		if tpl, ok = s.templates.Lookup(templateName); !ok {
			return models.Document{}, fmt.Errorf("template %q: %w", templateName, apperr.ErrNotFound)
		}
	}
	if overlay.Title != "" {
		tpl.Title = overlay.Title
	}
	if overlay.Category != "" {
		tpl.Category = overlay.Category
	}
	if overlay.Content != "" {
		tpl.Content = overlay.Content
	}
	if tpl == (templates.Template{}) {
		return s.session.CreateNewDocument(nil), nil
	}
	return s.session.CreateNewDocument(&tpl), nil
}

// DeleteDocument removes a document.
func (s *Service) DeleteDocument(id string) error {
	if !s.session.DeleteDocument(id) {
		return fmt.Errorf("document %q: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// SetFavorite flags or unflags a document and returns it.
func (s *Service) SetFavorite(id string, favorite bool) (models.Document, error) {
	if !s.session.SetFavorite(id, favorite) {
		return models.Document{}, fmt.Errorf("document %q: %w", id, apperr.ErrNotFound)
	}
	return s.GetDocument(id)
}

// SetCategory moves a document to category and returns it.
func (s *Service) SetCategory(id, category string) (models.Document, error) {
	if !s.session.SetCategory(id, category) {
		return models.Document{}, fmt.Errorf("document %q: %w", id, apperr.ErrNotFound)
	}
	return s.GetDocument(id)
}

// Switch opens the document with the given id.
func (s *Service) Switch(id string) (Snapshot, error) {
	if !s.session.SwitchToDocument(id) {
		return Snapshot{}, fmt.Errorf("document %q: %w", id, apperr.ErrNotFound)
	}
	return s.State(), nil
}

// UpdateContent replaces the current document's content. A non-empty
// ifMatch must equal the checksum of the content being replaced.
func (s *Service) UpdateContent(content, ifMatch string) (Snapshot, error) {
	if err := s.session.ReplaceContent(ifMatch, content); err != nil {
		return Snapshot{}, err
	}
	return s.State(), nil
}

// UpdateTitle renames the current document.
func (s *Service) UpdateTitle(title string) (Snapshot, error) {
	if !s.session.UpdateTitle(title) {
		return Snapshot{}, errNoDocument
	}
	return s.State(), nil
}

// Save persists the current document and clears the dirty flag.
func (s *Service) Save() (Snapshot, error) {
	if !s.session.SaveDocument() {
		return Snapshot{}, errNoDocument
	}
	return s.State(), nil
}

// Undo steps back in the current document's history. Nothing to undo is not
// an error; the unchanged state is returned.
func (s *Service) Undo() Snapshot {
	s.session.Undo()
	return s.State()
}

// Redo steps forward in the current document's history.
func (s *Service) Redo() Snapshot {
	s.session.Redo()
	return s.State()
}

// UpdateSelection records the selection range.
func (s *Service) UpdateSelection(start, end int) Snapshot {
	s.session.UpdateSelection(start, end)
	return s.State()
}

// Lines returns the line index of the current document.
func (s *Service) Lines() *lineindex.Index {
	return s.session.Lines()
}

// EditLines applies fn to the current document's line index. It fails with
// ErrNotFound when no document is open.
func (s *Service) EditLines(fn func(*lineindex.Index) bool) (bool, error) {
	if _, err := s.current(); err != nil {
		return false, err
	}
	return fn(s.session.Lines()), nil
}

var errNoDocument = fmt.Errorf("no current document: %w", apperr.ErrNotFound)

func (s *Service) current() (models.Document, error) {
	doc, ok := s.session.Current()
	if !ok {
		return models.Document{}, errNoDocument
	}
	return doc, nil
}
