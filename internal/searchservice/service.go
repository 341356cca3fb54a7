// Package searchservice runs a launcher query against the store and turns
// the rows into entries.
package searchservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/agenda-search/internal/agenda"
	"github.com/starford/agenda-search/internal/models"
	"github.com/starford/agenda-search/internal/results"
)

// Type selects what a query is matched against.
type Type string

// Search types, spelled the way the launcher passes them.
const (
	TypeTitle   Type = "i"
	TypeProject Type = "p"
)

// ParseType accepts the short flag values and their long names.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "i", "title":
		return TypeTitle, nil
	case "p", "project":
		return TypeProject, nil
	}
	return "", fmt.Errorf("search type %q: want i (title) or p (project)", s)
}

// Request is one launcher query.
type Request struct {
	Query       string
	Type        Type
	ProjectOnly bool
}

// Service coordinates the query engine and the result assembler.
type Service struct {
	engine    agenda.Engine
	assembler *results.Assembler
	logger    *slog.Logger
}

// NewService creates a new search service.
func NewService(engine agenda.Engine, assembler *results.Assembler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, assembler: assembler, logger: logger}
}

// Search runs req and returns the entries to show. An empty query runs
// nothing and returns an empty, non-nil list.
func (s *Service) Search(ctx context.Context, req Request) ([]models.Entry, error) {
	if strings.TrimSpace(req.Query) == "" {
		return []models.Entry{}, nil
	}

	switch req.Type {
	case TypeProject:
		return s.searchProjects(ctx, req)
	case TypeTitle, "":
		return s.searchTitles(ctx, req)
	}
	return nil, fmt.Errorf("searchservice: unknown search type %q", req.Type)
}

// Ping checks the query engine.
func (s *Service) Ping(ctx context.Context) error {
	return s.engine.Ping(ctx)
}

func (s *Service) searchTitles(ctx context.Context, req Request) ([]models.Entry, error) {
	s.logger.Debug("searching notes", slog.String("query", req.Query))

	notes, err := s.engine.SearchNotesByTitle(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("notes matched", slog.Int("rows", len(notes)))

	return s.assembler.Assemble(ctx, results.TitleSearch{Notes: notes})
}

func (s *Service) searchProjects(ctx context.Context, req Request) ([]models.Entry, error) {
	s.logger.Debug("searching projects",
		slog.String("query", req.Query),
		slog.Bool("project_only", req.ProjectOnly))

	projects, err := s.engine.SearchProjectsByTitle(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	var notes []models.RawRow
	if !req.ProjectOnly && len(projects) > 0 {
		notes, err = s.engine.SearchNotesByProjectTitle(ctx, req.Query)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Debug("projects matched",
		slog.Int("projects", len(projects)),
		slog.Int("notes", len(notes)))

	return s.assembler.Assemble(ctx, results.ProjectSearch{
		Projects:    projects,
		Notes:       notes,
		ProjectOnly: req.ProjectOnly,
	})
}
