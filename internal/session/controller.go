// Package session implements the editor session controller: the single
// place the UI layer reads editor state from and sends every document
// mutation through.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/checksum"
	"github.com/starford/quire/internal/docstore"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/lineindex"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/templates"
)

// Listener is notified after documents are persisted or deleted. Calls are
// made outside the controller lock, in mutation order, one at a time. A call
// may run on the goroutine of a later mutation than the one it reports.
type Listener interface {
	DocumentSaved(doc models.Document)
	DocumentDeleted(id string)
}

// State is a snapshot of the session for rendering.
type State struct {
	CurrentDocument *models.Document  `json:"currentDocument"`
	Documents       []models.Document `json:"documents"`
	IsDirty         bool              `json:"isDirty"`
	Selection       models.Selection  `json:"selection"`
	CanUndo         bool              `json:"canUndo"`
	CanRedo         bool              `json:"canRedo"`
}

// Controller owns the current document, the cached document set, the dirty
// flag, the selection and one undo history per document.
//
// IsDirty means "changed since the last explicit save or document switch".
// UpdateContent already persists synchronously, so a dirty document is
// durable; the flag only drives the unsaved indicator.
type Controller struct {
	store       *docstore.Store
	logger      *slog.Logger
	historySize int
	listeners   []Listener
	lines       *lineindex.Index

	mu        sync.Mutex
	docs      []models.Document
	current   *models.Document
	dirty     bool
	selection models.Selection
	histories map[string]*history.Manager

	pending    []func(Listener)
	delivering bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithHistorySize sets the number of undo snapshots kept per document.
func WithHistorySize(n int) Option {
	return func(c *Controller) {
		c.historySize = n
	}
}

// WithListener registers a listener for persisted changes.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// New creates a controller and loads the document set from store. The
// session resumes into the stored current document; if the pointer is
// missing or dangling, the most recently updated document is opened.
func New(store *docstore.Store, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		logger:      slog.Default(),
		historySize: history.DefaultMaxSize,
		histories:   make(map[string]*history.Manager),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lines = lineindex.New(surface{c}, cursor{c})

	c.docs = store.GetAll()
	id, ok := store.CurrentID()
	if i := c.indexOf(id); ok && i >= 0 {
		c.setCurrent(c.docs[i])
	} else {
		c.fallback()
	}
	c.logger.Info("session: loaded",
		slog.Int("documents", len(c.docs)),
		slog.String("current", c.currentID()))
	return c
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Documents: append([]models.Document{}, c.docs...),
		IsDirty:   c.dirty,
		Selection: c.selection,
	}
	if c.current != nil {
		doc := *c.current
		st.CurrentDocument = &doc
		if h, ok := c.histories[doc.ID]; ok {
			st.CanUndo = h.CanUndo()
			st.CanRedo = h.CanRedo()
		}
	}
	return st
}

// Current returns a copy of the current document.
func (c *Controller) Current() (models.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return models.Document{}, false
	}
	return *c.current, true
}

// Document returns a copy of the cached document with the given id.
func (c *Controller) Document(id string) (models.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.docs[i], true
	}
	return models.Document{}, false
}

// Lines returns the line index over the current document's content. Line
// edits made through it are applied with UpdateContent.
func (c *Controller) Lines() *lineindex.Index {
	return c.lines
}

// CreateNewDocument creates, persists and opens a new document. A non-nil
// tpl supplies the initial content, and its title and category when set.
// The new document starts with an empty history.
func (c *Controller) CreateNewDocument(tpl *templates.Template) models.Document {
	c.mu.Lock()
	defer c.unlock()

	doc := c.store.CreateNew()
	if tpl != nil {
		doc.Content = tpl.Content
		if tpl.Title != "" {
			doc.Title = tpl.Title
		}
		if tpl.Category != "" {
			doc.Category = tpl.Category
		}
		doc = c.store.RecomputeStats(doc)
	}
	c.persist(doc)
	c.setCurrent(doc)
	c.logger.Info("session: document created", slog.String("id", doc.ID))
	return doc
}

// SwitchToDocument opens the document with the given id. Unknown ids leave
// the session unchanged.
func (c *Controller) SwitchToDocument(id string) bool {
	c.mu.Lock()
	defer c.unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.setCurrent(c.docs[i])
	return true
}

// UpdateContent records an edit of the current document. Unchanged content
// is ignored; otherwise the new content is pushed onto the document's
// history, persisted with fresh stats and the session is marked dirty.
func (c *Controller) UpdateContent(content string) bool {
	c.mu.Lock()
	defer c.unlock()
	return c.updateContent(content)
}

// ReplaceContent is UpdateContent with a precondition checked under the same
// lock: a non-empty ifMatch must equal the checksum of the current content.
// It fails with apperr.ErrNotFound when no document is open and with
// apperr.ErrConflict when the precondition does not hold. Unchanged content
// is not an error.
func (c *Controller) ReplaceContent(ifMatch, content string) error {
	c.mu.Lock()
	defer c.unlock()

	if c.current == nil {
		return fmt.Errorf("no current document: %w", apperr.ErrNotFound)
	}
	if ifMatch != "" && ifMatch != checksum.String(c.current.Content) {
		return fmt.Errorf("document %q: %w", c.current.ID, apperr.ErrConflict)
	}
	c.updateContent(content)
	return nil
}

// EditContent rewrites the current document's content with fn and records
// the result like UpdateContent. fn runs under the controller lock and must
// not call back into the controller. It returns false when no document is
// open or fn declines the edit.
func (c *Controller) EditContent(fn func(content string) (string, bool)) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.current == nil {
		return false
	}
	content, ok := fn(c.current.Content)
	if !ok {
		return false
	}
	c.updateContent(content)
	return true
}

// updateContent must be called with mu held.
func (c *Controller) updateContent(content string) bool {
	if c.current == nil || content == c.current.Content {
		return false
	}

	h := c.historyFor(c.current.ID)
	// Seed the history with what the document held before this edit so the
	// first change can be undone.
	if top, ok := h.Current(); !ok || top.Content != c.current.Content {
		h.AddState(c.current.Content)
	}
	h.AddState(content)

	doc := *c.current
	doc.Content = content
	c.persist(c.store.RecomputeStats(doc))
	c.dirty = true
	return true
}

// UpdateTitle renames the current document. Titles are not versioned.
func (c *Controller) UpdateTitle(title string) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.current == nil {
		return false
	}
	doc := *c.current
	doc.Title = title
	c.persist(c.store.RecomputeStats(doc))
	return true
}

// DeleteDocument removes a document and its history. When the current
// document is deleted the most recently updated remaining document becomes
// current, or none if the set is empty.
func (c *Controller) DeleteDocument(id string) bool {
	c.mu.Lock()
	defer c.unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.store.Delete(id)
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	delete(c.histories, id)
	c.emit(func(l Listener) { l.DocumentDeleted(id) })

	if c.current != nil && c.current.ID == id {
		c.fallback()
	}
	c.logger.Info("session: document deleted", slog.String("id", id))
	return true
}

// SaveDocument persists the current document and clears the dirty flag.
func (c *Controller) SaveDocument() bool {
	c.mu.Lock()
	defer c.unlock()

	if c.current == nil {
		return false
	}
	c.persist(c.store.RecomputeStats(*c.current))
	c.dirty = false
	return true
}

// Undo restores the previous snapshot of the current document. It returns
// false, changing nothing, when there is nothing to undo.
func (c *Controller) Undo() bool {
	return c.travel((*history.Manager).Undo)
}

// Redo re-applies the next snapshot of the current document.
func (c *Controller) Redo() bool {
	return c.travel((*history.Manager).Redo)
}

func (c *Controller) travel(step func(*history.Manager) (history.State, bool)) bool {
	c.mu.Lock()
	defer c.unlock()

	if c.current == nil {
		return false
	}
	h, ok := c.histories[c.current.ID]
	if !ok {
		return false
	}
	s, ok := step(h)
	if !ok {
		return false
	}
	doc := *c.current
	doc.Content = s.Content
	c.persist(c.store.RecomputeStats(doc))
	c.dirty = true
	return true
}

// UpdateSelection records the selection range. It is never persisted.
func (c *Controller) UpdateSelection(start, end int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = normalize(start, end)
}

// SetFavorite flags or unflags a document.
func (c *Controller) SetFavorite(id string, favorite bool) bool {
	return c.updateMeta(id, func(d *models.Document) { d.IsFavorite = favorite })
}

// SetCategory moves a document to category; an empty category resets it to
// the default.
func (c *Controller) SetCategory(id, category string) bool {
	if category == "" {
		category = models.DefaultCategory
	}
	return c.updateMeta(id, func(d *models.Document) { d.Category = category })
}

func (c *Controller) updateMeta(id string, fn func(*models.Document)) bool {
	c.mu.Lock()
	defer c.unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	doc := c.docs[i]
	fn(&doc)
	c.persist(c.store.RecomputeStats(doc))
	return true
}

// Reload re-reads the document set from the store, for example after the
// backing files were changed by another process. The current document is
// kept if it still exists. Histories of vanished documents are dropped.
func (c *Controller) Reload() {
	c.mu.Lock()
	defer c.unlock()

	c.docs = c.store.GetAll()
	for id := range c.histories {
		if c.indexOf(id) < 0 {
			delete(c.histories, id)
		}
	}
	if c.current != nil {
		if i := c.indexOf(c.current.ID); i >= 0 {
			doc := c.docs[i]
			c.current = &doc
			return
		}
	}
	c.fallback()
}

// persist saves doc and refreshes the cached copies. mu must be held.
func (c *Controller) persist(doc models.Document) {
	c.store.Save(doc)
	if i := c.indexOf(doc.ID); i >= 0 {
		c.docs[i] = doc
	} else {
		c.docs = append(c.docs, doc)
	}
	if c.current != nil && c.current.ID == doc.ID {
		cur := doc
		c.current = &cur
	}
	c.emit(func(l Listener) { l.DocumentSaved(doc) })
}

// setCurrent opens doc with a clean state. mu must be held.
func (c *Controller) setCurrent(doc models.Document) {
	c.current = &doc
	c.dirty = false
	c.selection = models.Selection{}
	c.store.SetCurrentID(doc.ID)
}

// fallback opens the most recently updated document, or clears the current
// document when there is none. mu must be held.
func (c *Controller) fallback() {
	best := -1
	for i, d := range c.docs {
		if best < 0 || d.UpdatedAt.After(c.docs[best].UpdatedAt) {
			best = i
		}
	}
	if best < 0 {
		c.current = nil
		c.dirty = false
		c.selection = models.Selection{}
		c.store.SetCurrentID("")
		return
	}
	c.setCurrent(c.docs[best])
}

func (c *Controller) historyFor(id string) *history.Manager {
	h, ok := c.histories[id]
	if !ok {
		h = history.New(c.historySize)
		c.histories[id] = h
	}
	return h
}

func (c *Controller) indexOf(id string) int {
	for i := range c.docs {
		if c.docs[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) currentID() string {
	if c.current == nil {
		return ""
	}
	return c.current.ID
}

// emit queues a listener call to run once mu is released.
func (c *Controller) emit(ev func(Listener)) {
	if len(c.listeners) > 0 {
		c.pending = append(c.pending, ev)
	}
}

// unlock releases mu and delivers queued listener calls. Only one goroutine
// delivers at a time; it keeps draining until the queue is empty, so events
// queued meanwhile by other callers, or by listeners, keep their order.
func (c *Controller) unlock() {
	if c.delivering || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		batch := c.pending
		c.pending = nil
		c.mu.Unlock()
		for _, ev := range batch {
			for _, l := range c.listeners {
				ev(l)
			}
		}
		c.mu.Lock()
	}
	c.delivering = false
	c.mu.Unlock()
}

func normalize(start, end int) models.Selection {
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if end < start {
		start, end = end, start
	}
	return models.Selection{Start: start, End: end}
}
