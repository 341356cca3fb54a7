package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/agenda-search/internal/searchservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *searchservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/search", h.Search)
	r.Get("/action", h.Action)
	r.Get("/ready", h.Ready)

	return r
}
