// Package validity decides whether a note row has been soft-deleted.
package validity

import (
	"fmt"

	"github.com/starford/agenda-search/internal/apperr"
	"github.com/starford/agenda-search/internal/bplist"
	"github.com/starford/agenda-search/internal/keyedarchive"
)

// DeletedField is the archived property that marks a note as deleted.
const DeletedField = "markedDeleted"

// IsDeleted decodes a note's properties blob and reports its markedDeleted
// flag. A missing flag means the note was never deleted. Decode and
// resolve failures are returned, never read as either answer.
func IsDeleted(blob []byte) (bool, error) {
	if len(blob) == 0 {
		return false, fmt.Errorf("validity: empty blob: %w", apperr.ErrMalformedArchive)
	}
	table, err := bplist.Decode(blob)
	if err != nil {
		return false, fmt.Errorf("validity: %w", err)
	}
	rec, err := keyedarchive.Open(table)
	if err != nil {
		return false, fmt.Errorf("validity: %w", err)
	}
	deleted, _, err := rec.Bool(DeletedField)
	if err != nil {
		return false, fmt.Errorf("validity: %w", err)
	}
	return deleted, nil
}
