package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/redate/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// separator is the default for requests that do not name one.
func NewRouter(svc *session.Service, authEnabled bool, token string, sseHandler http.Handler, separator string) chi.Router {
	h := NewHandler(svc, separator)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/preview", h.Preview)
	r.Post("/plan", h.Plan)
	r.Post("/rename", h.Rename)

	r.Get("/undo", h.Pending)
	r.Post("/undo", h.Undo)

	r.Get("/history", h.History)
	r.Get("/history/{id}", h.Batch)

	r.Get("/months", h.CountMonths)
	r.Post("/months", h.NormalizeMonths)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
