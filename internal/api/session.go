package api

import (
	"net/http"
	"strings"
)

// GetSession handles GET /session.
//
//	@Summary		Get the editor session state
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	editor.Snapshot
//	@Security		BearerAuth
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State())
}

// SwitchDocument handles POST /session/switch.
func (h *Handler) SwitchDocument(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "switch document", err)
		return
	}
	snap, err := h.svc.Switch(req.ID)
	if err != nil {
		writeError(w, "switch document", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateContent handles PUT /session/content.
//
//	@Summary		Replace the current document's content
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			If-Match	header		string			false	"SHA-256 checksum of the content being replaced"
//	@Param			body		body		ContentRequest	true	"New content"
//	@Success		200			{object}	editor.Snapshot
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/session/content [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "update content", err)
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	snap, err := h.svc.UpdateContent(*req.Content, ifMatch)
	if err != nil {
		writeError(w, "update content", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateTitle handles PUT /session/title.
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "update title", err)
		return
	}
	snap, err := h.svc.UpdateTitle(req.Title)
	if err != nil {
		writeError(w, "update title", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SaveDocument handles POST /session/save.
func (h *Handler) SaveDocument(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.svc.Save()
	if err != nil {
		writeError(w, "save document", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Undo handles POST /session/undo. With nothing to undo the unchanged state
// is returned.
func (h *Handler) Undo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Undo())
}

// Redo handles POST /session/redo.
func (h *Handler) Redo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Redo())
}

// UpdateSelection handles PUT /session/selection.
func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, "update selection", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.UpdateSelection(req.Start, req.End))
}
