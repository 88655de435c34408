package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/lineindex"
)

// ListLines handles GET /session/lines.
func (h *Handler) ListLines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LinesResponse{Lines: h.svc.Lines().Lines()})
}

// GetLine handles GET /session/lines/{n}.
func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	n, err := pathInt(r, "n")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("line number must be a positive integer"))
		return
	}
	l, ok := h.svc.Lines().LineByNumber(n)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("line %d not found", n)))
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// LineAtOffset handles GET /session/lines/at?offset=.
func (h *Handler) LineAtOffset(w http.ResponseWriter, r *http.Request) {
	o, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'offset' must be an integer"))
		return
	}
	l, ok := h.svc.Lines().LineByOffset(o)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("offset %d is outside the document", o)))
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// GetCursor handles GET /session/cursor.
func (h *Handler) GetCursor(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cursor())
}

// SetCursor handles PUT /session/cursor.
func (h *Handler) SetCursor(w http.ResponseWriter, r *http.Request) {
	var req CursorRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "set cursor", err)
		return
	}
	if !h.svc.Lines().SetCursorPosition(req.Line, req.Column) {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("line %d not found", req.Line)))
		return
	}
	writeJSON(w, http.StatusOK, h.cursor())
}

func (h *Handler) cursor() CursorResponse {
	idx := h.svc.Lines()
	return CursorResponse{
		Line:   idx.CursorLine(),
		Column: idx.CursorColumn(),
		Offset: h.svc.State().Selection.End,
	}
}

// EditLines handles POST /session/lines/{op}.
//
//	@Summary		Apply a line-level edit to the current document
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			op		path		string			true	"Edit operation"	Enums(insert, delete, update, split, merge)
//	@Param			body	body		LineEditRequest	true	"Edit arguments"
//	@Success		200		{object}	LineEditResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/lines/{op} [post]
func (h *Handler) EditLines(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "op")
	var req LineEditRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "edit lines", err)
		return
	}
	if err := req.validateFor(op); err != nil {
		writeError(w, "edit lines", fmt.Errorf("%s: %w", err.Error(), apperr.ErrInvalid))
		return
	}

	var fn func(*lineindex.Index) bool
	switch op {
	case LineOpInsert:
		fn = func(x *lineindex.Index) bool { return x.InsertLine(req.Line, req.Content) }
	case LineOpDelete:
		fn = func(x *lineindex.Index) bool { return x.DeleteLine(req.Line) }
	case LineOpUpdate:
		fn = func(x *lineindex.Index) bool { return x.UpdateLine(req.Line, req.Content) }
	case LineOpSplit:
		fn = func(x *lineindex.Index) bool { return x.SplitLine(req.Line, req.Offset) }
	case LineOpMerge:
		fn = func(x *lineindex.Index) bool { return x.MergeLines(req.Line) }
	default:
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("unknown line operation %q", op)))
		return
	}

	applied, err := h.svc.EditLines(fn)
	if err != nil {
		writeError(w, "edit lines", err)
		return
	}
	writeJSON(w, http.StatusOK, LineEditResponse{Applied: applied, Lines: h.svc.Lines().Lines()})
}
