package agenda

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/agenda-search/internal/apperr"
	"github.com/starford/agenda-search/internal/models"
)

const noteColumns = `
	SELECT n.ZIDENTIFIER,
	       COALESCE(n.ZTITLE, ''),
	       n.ZPROPERTIES,
	       CAST(n.ZMODIFIEDDATE AS INTEGER),
	       COALESCE(p.ZTITLE, '')
	FROM ZNOTE n
	LEFT JOIN ZPROJECT p ON p.Z_PK = n.ZPROJECT`

const notesByTitleSQL = noteColumns + `
	WHERE n.ZTITLE LIKE ? ESCAPE '\'
	ORDER BY n.ZMODIFIEDDATE DESC`

const notesByProjectTitleSQL = noteColumns + `
	WHERE p.ZTITLE LIKE ? ESCAPE '\'
	ORDER BY p.ZTITLE, n.ZMODIFIEDDATE DESC`

const projectsByTitleSQL = `
	SELECT p.ZIDENTIFIER,
	       COALESCE(p.ZTITLE, ''),
	       COALESCE(c.ZTITLE, '')
	FROM ZPROJECT p
	LEFT JOIN ZCATEGORY c ON c.Z_PK = p.ZCATEGORY
	WHERE p.ZTITLE LIKE ? ESCAPE '\'
	ORDER BY p.ZTITLE`

// SearchNotesByTitle returns notes whose title contains term, most recently
// edited first.
func (db *DB) SearchNotesByTitle(ctx context.Context, term string) ([]models.RawRow, error) {
	return db.queryNotes(ctx, "search notes by title", notesByTitleSQL, term)
}

// SearchNotesByProjectTitle returns notes whose project title contains term.
func (db *DB) SearchNotesByProjectTitle(ctx context.Context, term string) ([]models.RawRow, error) {
	return db.queryNotes(ctx, "search notes by project", notesByProjectTitleSQL, term)
}

// SearchProjectsByTitle returns projects whose title contains term. The
// parent title of each row is its category.
func (db *DB) SearchProjectsByTitle(ctx context.Context, term string) ([]models.RawRow, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	query, args := db.withLimit(projectsByTitleSQL, likePattern(term))
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("search projects", err)
	}
	defer rows.Close()

	var out []models.RawRow
	for rows.Next() {
		r := models.RawRow{Kind: models.KindProject}
		if err := rows.Scan(&r.ID, &r.Title, &r.ParentTitle); err != nil {
			return nil, unavailable("scan project", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("search projects", err)
	}
	return out, nil
}

func (db *DB) queryNotes(ctx context.Context, op, query, term string) ([]models.RawRow, error) {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	query, args := db.withLimit(query, likePattern(term))
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var out []models.RawRow
	for rows.Next() {
		var (
			r  = models.RawRow{Kind: models.KindNote}
			ts sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.ValidityBlob, &ts, &r.ParentTitle); err != nil {
			return nil, unavailable("scan note", err)
		}
		if ts.Valid {
			v := ts.Int64
			r.RawTimestamp = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return out, nil
}

func (db *DB) withLimit(query string, args ...any) (string, []any) {
	if db.limit > 0 {
		return query + "\n\tLIMIT ?", append(args, db.limit)
	}
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches term anywhere, with LIKE wildcards in term taken literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func unavailable(op string, err error) error {
	return fmt.Errorf("agenda: %s: %w: %w", op, apperr.ErrEngineUnavailable, err)
}
