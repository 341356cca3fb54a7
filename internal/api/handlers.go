package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/agenda-search/internal/action"
	"github.com/starford/agenda-search/internal/apperr"
	"github.com/starford/agenda-search/internal/searchservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *searchservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *searchservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Search handles GET /api/search.
//
//	@Summary		Search notes by title or projects by title
//	@Tags			search
//	@Produce		json
//	@Param			q				query		string	false	"Search query"
//	@Param			type			query		string	false	"i (title) or p (project)"	Enums(i, p)
//	@Param			project_only	query		bool	false	"Only list projects"
//	@Success		200				{object}	SearchResponse
//	@Failure		400				{object}	errResponse
//	@Failure		503				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	typ, err := searchservice.ParseType(q.Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	projectOnly := false
	if raw := q.Get("project_only"); raw != "" {
		projectOnly, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "project_only must be a boolean")
			return
		}
	}

	entries, err := h.svc.Search(r.Context(), searchservice.Request{
		Query:       q.Get("q"),
		Type:        typ,
		ProjectOnly: projectOnly,
	})
	if err != nil {
		slog.Error("search failed", slog.String("query", q.Get("q")), slog.String("error", err.Error()))
		if errors.Is(err, apperr.ErrEngineUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: entries})
}

// Action handles GET /api/action.
//
//	@Summary		Decode an action identifier into the URL that performs it
//	@Tags			action
//	@Produce		json
//	@Param			id	query		string	true	"Action identifier"
//	@Success		200	{object}	ActionResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/action [get]
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	a, err := action.Parse(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{Kind: a.Kind.String(), ID: a.ID, URL: a.URL()})
}

// Ready handles GET /api/ready by pinging the store.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
