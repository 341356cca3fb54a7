package agenda

import (
	"context"

	"github.com/starford/agenda-search/internal/models"
)

// Engine is the query surface the search service depends on.
type Engine interface {
	SearchNotesByTitle(ctx context.Context, term string) ([]models.RawRow, error)
	SearchProjectsByTitle(ctx context.Context, term string) ([]models.RawRow, error)
	SearchNotesByProjectTitle(ctx context.Context, term string) ([]models.RawRow, error)
	Ping(ctx context.Context) error
}

// Verify *DB satisfies Engine at compile time.
var _ Engine = (*DB)(nil)
