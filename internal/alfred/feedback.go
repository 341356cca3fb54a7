// Package alfred writes Script Filter feedback for the launcher.
package alfred

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/starford/agenda-search/internal/models"
)

// Feedback is the top-level Script Filter document.
type Feedback struct {
	Items []models.Entry `json:"items"`
}

// Render writes entries as Script Filter JSON. A nil slice is written as
// an empty item list.
func Render(w io.Writer, entries []models.Entry) error {
	if entries == nil {
		entries = []models.Entry{}
	}
	if err := json.NewEncoder(w).Encode(Feedback{Items: entries}); err != nil {
		return fmt.Errorf("alfred: encode feedback: %w", err)
	}
	return nil
}

// RenderError writes a single non-actionable item describing err.
func RenderError(w io.Writer, err error) error {
	return Render(w, []models.Entry{{
		Title:    "Search failed",
		Subtitle: err.Error(),
		Valid:    false,
	}})
}
