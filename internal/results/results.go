// Package results turns raw store rows into launcher entries.
package results

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/agenda-search/internal/action"
	"github.com/starford/agenda-search/internal/cocoatime"
	"github.com/starford/agenda-search/internal/models"
	"github.com/starford/agenda-search/internal/validity"
)

// Fixed entry texts.
const (
	NoResultsTitle = "No search results found."
	OpenNoteLabel  = "Open note"
	blankLabel     = " "
)

// Search selects how rows are turned into entries. It is implemented by
// TitleSearch and ProjectSearch only.
type Search interface {
	search()
}

// TitleSearch holds notes matched by title.
type TitleSearch struct {
	Notes []models.RawRow
}

// ProjectSearch holds projects matched by title and, unless ProjectOnly is
// set, notes whose project matched.
type ProjectSearch struct {
	Projects    []models.RawRow
	Notes       []models.RawRow
	ProjectOnly bool
}

func (TitleSearch) search()   {}
func (ProjectSearch) search() {}

// Assembler builds entries in the order the engine returned the rows.
type Assembler struct {
	loc     *time.Location
	workers int
	logger  *slog.Logger
	deleted func([]byte) (bool, error)
}

// NewAssembler returns an Assembler that formats dates in loc and checks
// note validity on up to workers goroutines.
func NewAssembler(loc *time.Location, workers int, logger *slog.Logger) *Assembler {
	if loc == nil {
		loc = time.Local
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{loc: loc, workers: workers, logger: logger, deleted: validity.IsDeleted}
}

// Assemble returns the entries for s. A row whose validity blob cannot be
// read fails the whole call.
func (a *Assembler) Assemble(ctx context.Context, s Search) ([]models.Entry, error) {
	switch s := s.(type) {
	case TitleSearch:
		return a.titles(ctx, s)
	case ProjectSearch:
		return a.projects(ctx, s)
	}
	return nil, fmt.Errorf("results: unknown search %T", s)
}

func (a *Assembler) titles(ctx context.Context, s TitleSearch) ([]models.Entry, error) {
	live, err := a.live(ctx, s.Notes)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return NoResults(), nil
	}

	out := make([]models.Entry, 0, len(live))
	for _, n := range live {
		out = append(out, models.Entry{
			Title:    n.Title,
			Subtitle: cocoatime.Format(n.RawTimestamp, a.loc, OpenNoteLabel) + projectSuffix(n.ParentTitle),
			ActionID: action.NoteID(n.ID),
			Valid:    true,
		})
	}
	return out, nil
}

func (a *Assembler) projects(ctx context.Context, s ProjectSearch) ([]models.Entry, error) {
	if len(s.Projects) == 0 {
		return NoResults(), nil
	}

	out := make([]models.Entry, 0, len(s.Projects)+len(s.Notes))
	for _, p := range s.Projects {
		subtitle := `Open this project from "` + p.ParentTitle + `" Category`
		if s.ProjectOnly {
			subtitle = `Add this note to project "` + p.Title + `"`
		}
		out = append(out, models.Entry{
			Title:    p.Title,
			Subtitle: subtitle,
			ActionID: action.ProjectID(p.ID),
			Valid:    true,
		})
	}
	if s.ProjectOnly {
		return out, nil
	}

	live, err := a.live(ctx, s.Notes)
	if err != nil {
		return nil, err
	}
	for _, n := range live {
		out = append(out, models.Entry{
			Title:    n.Title,
			Subtitle: cocoatime.Format(n.RawTimestamp, a.loc, blankLabel) + projectSuffix(n.ParentTitle),
			ActionID: action.AttachID(n.ID),
			Valid:    true,
		})
	}
	return out, nil
}

// live drops deleted notes. Rows are checked concurrently; the result keeps
// the input order.
func (a *Assembler) live(ctx context.Context, rows []models.RawRow) ([]models.RawRow, error) {
	deleted := make([]bool, len(rows))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range rows {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			d, err := a.deleted(rows[i].ValidityBlob)
			if err != nil {
				return fmt.Errorf("results: note %s: %w", rows[i].ID, err)
			}
			deleted[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.RawRow, 0, len(rows))
	for i, r := range rows {
		if deleted[i] {
			a.logger.Debug("skipping deleted note", slog.String("id", r.ID))
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// NoResults is the single non-actionable entry shown for an empty result.
func NoResults() []models.Entry {
	return []models.Entry{{Title: NoResultsTitle, Valid: false}}
}

func projectSuffix(parent string) string {
	return ` from "` + parent + `" Project`
}
