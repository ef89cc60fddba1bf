package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents.
	r.Get("/docs", h.ListDocuments)
	r.Post("/docs", h.CreateDocument)
	r.Get("/docs/{id}", h.GetDocument)
	r.Delete("/docs/{id}", h.DeleteDocument)

	// Session events from the rendering surface.
	r.Put("/docs/{id}/target", h.OpenTarget)
	r.Post("/docs/{id}/edited", h.Edited)
	r.Post("/docs/{id}/loaded", h.Loaded)
	r.Post("/docs/{id}/console", h.Console)
	r.Post("/docs/{id}/saved", h.Saved)

	// Rendered preview.
	r.Get("/docs/{id}/preview", h.Preview)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
