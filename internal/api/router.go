package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/editor"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *editor.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/{id}", h.GetDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Put("/documents/{id}/favorite", h.SetFavorite)
	r.Put("/documents/{id}/category", h.SetCategory)

	// Editor session.
	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/switch", h.SwitchDocument)
		r.Put("/content", h.UpdateContent)
		r.Put("/title", h.UpdateTitle)
		r.Post("/save", h.SaveDocument)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
		r.Put("/selection", h.UpdateSelection)

		r.Get("/lines", h.ListLines)
		r.Get("/lines/at", h.LineAtOffset)
		r.Get("/lines/{n}", h.GetLine)
		r.Post("/lines/{op}", h.EditLines)
		r.Get("/cursor", h.GetCursor)
		r.Put("/cursor", h.SetCursor)
	})

	r.Get("/templates", h.ListTemplates)
	r.Get("/search", h.Search)
	r.Get("/categories", h.Categories)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
