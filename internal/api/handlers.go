// Package api implements the Quire REST API using chi.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/editor"
	"github.com/starford/quire/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *editor.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *editor.Service) *Handler {
	return &Handler{svc: svc}
}

// ListDocuments handles GET /documents.
//
//	@Summary		List documents with optional filtering and pagination
//	@Tags			documents
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category"
//	@Param			favorite	query		bool	false	"Only favorites"
//	@Param			sort		query		string	false	"Sort order"	Enums(updated, title)
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := index.ListFilter{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	f.Favorites, _ = strconv.ParseBool(q.Get("favorite"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListDocuments(f)
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: rows, Total: total})
}

// GetDocument handles GET /documents/{id}.
//
//	@Summary		Get a single document
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	DocumentResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetDocument(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /documents. The new document becomes current.
//
//	@Summary		Create a document, optionally from a template
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	false	"Template to start from"
//	@Success		201		{object}	DocumentResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, "create document", err)
			return
		}
	}
	doc, err := h.svc.CreateDocument(req.Template)
	if err != nil {
		writeError(w, "create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// DeleteDocument handles DELETE /documents/{id}.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			id	path	string	true	"Document id"
//	@Success		204	"Document deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDocument(chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFavorite handles PUT /documents/{id}/favorite.
func (h *Handler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "set favorite", err)
		return
	}
	doc, err := h.svc.SetFavorite(chi.URLParam(r, "id"), *req.Favorite)
	if err != nil {
		writeError(w, "set favorite", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SetCategory handles PUT /documents/{id}/category.
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "set category", err)
		return
	}
	doc, err := h.svc.SetCategory(chi.URLParam(r, "id"), req.Category)
	if err != nil {
		writeError(w, "set category", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListTemplates handles GET /templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": h.svc.Templates(),
	})
}

// Search handles GET /search.
//
//	@Summary		Full-text search across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Categories handles GET /categories.
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	cats, err := h.svc.Categories()
	if err != nil {
		writeError(w, "categories", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats})
}

// pathInt parses a positive integer URL parameter.
func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 1 {
		return 0, apperr.ErrInvalid
	}
	return n, nil
}
