package api

import "github.com/starford/agenda-search/internal/models"

// SearchResponse carries entries in launcher order.
type SearchResponse struct {
	Items []models.Entry `json:"items" validate:"required"`
}

// ActionResponse describes a decoded action identifier.
type ActionResponse struct {
	Kind string `json:"kind" example:"open-project" validate:"required"`
	ID   string `json:"id" example:"4F2A..." validate:"required"`
	URL  string `json:"url" example:"agenda://x-callback-url/open-project?identifier=4F2A" validate:"required"`
}
