package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// uploads, if non-nil, accepts POST /attachments into the attachments directory.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, uploads *AttachmentHandler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pipelines.
	r.Post("/ingest", h.Ingest)
	r.Post("/attachments/format", h.Format)

	// Queries.
	r.Get("/references/{name}", h.References)
	r.Get("/backlinks/{name}", h.Backlinks)
	r.Get("/orphans", h.Orphans)
	r.Get("/search", h.Search)

	if uploads != nil {
		r.Post("/attachments", uploads.Upload)
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
