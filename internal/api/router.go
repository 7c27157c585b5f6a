package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MatrixedMind/MatrixedMind/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether the X-Notes-Key check is enforced.
// eventsHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(svc *noteservice.Service, authEnabled bool, key string, eventsHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, key))

	r.Post("/notes", h.WriteNote)
	r.Get("/notes", h.GetNote)
	r.Get("/index", h.GetIndex)

	if eventsHandler != nil {
		r.Get("/events", eventsHandler.ServeHTTP)
	}

	return r
}
