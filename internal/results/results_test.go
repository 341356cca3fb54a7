package results

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/agenda-search/internal/apperr"
	"github.com/starford/agenda-search/internal/models"
	"github.com/starford/agenda-search/internal/testutil"
)

func testAssembler(workers int) *Assembler {
	return NewAssembler(time.UTC, workers, slog.New(slog.DiscardHandler))
}

func note(id string, blob []byte, ts *int64, parent string) models.RawRow {
	return models.RawRow{
		Kind:         models.KindNote,
		ID:           id,
		Title:        "Note " + id,
		ValidityBlob: blob,
		RawTimestamp: ts,
		ParentTitle:  parent,
	}
}

func project(id, title, category string) models.RawRow {
	return models.RawRow{Kind: models.KindProject, ID: id, Title: title, ParentTitle: category}
}

func TestTitleSearch_EndToEnd(t *testing.T) {
	rows := []models.RawRow{
		note("gone", testutil.DeletedBlob(), testutil.Int64(3600), "Inbox"),
		note("undated", testutil.LiveBlob(), nil, "Inbox"),
		note("midnight", testutil.LiveBlob(), testutil.Int64(0), "Work"),
	}

	got, err := testAssembler(2).Assemble(context.Background(), TitleSearch{Notes: rows})
	require.NoError(t, err)

	assert.Equal(t, []models.Entry{
		{Title: "Note undated", Subtitle: `Open note from "Inbox" Project`, ActionID: "undated", Valid: true},
		{Title: "Note midnight", Subtitle: `Last edit: 01 Jan 2001 from "Work" Project`, ActionID: "midnight", Valid: true},
	}, got)
}

func TestTitleSearch_NoDeletedRowsKeepsEveryRow(t *testing.T) {
	rows := make([]models.RawRow, 25)
	for i := range rows {
		rows[i] = note(fmt.Sprintf("n%02d", i), testutil.LiveBlob(), testutil.Int64(int64(i)*3600), "P")
	}

	got, err := testAssembler(4).Assemble(context.Background(), TitleSearch{Notes: rows})
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i, e := range got {
		assert.Equal(t, rows[i].ID, e.ActionID, "entry %d out of order", i)
	}
}

func TestTitleSearch_AllDeleted(t *testing.T) {
	rows := []models.RawRow{
		note("a", testutil.DeletedBlob(), nil, "P"),
		note("b", testutil.DeletedBlob(), nil, "P"),
	}
	got, err := testAssembler(1).Assemble(context.Background(), TitleSearch{Notes: rows})
	require.NoError(t, err)
	assert.Equal(t, NoResults(), got)
	assert.False(t, got[0].Valid)
	assert.Empty(t, got[0].ActionID)
}

func TestTitleSearch_Empty(t *testing.T) {
	got, err := testAssembler(1).Assemble(context.Background(), TitleSearch{})
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{{Title: NoResultsTitle}}, got)
}

func TestTitleSearch_MalformedBlobFailsRequest(t *testing.T) {
	rows := []models.RawRow{
		note("ok", testutil.LiveBlob(), nil, "P"),
		note("broken", []byte("garbage"), nil, "P"),
	}
	got, err := testAssembler(2).Assemble(context.Background(), TitleSearch{Notes: rows})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperr.ErrMalformedArchive)
	assert.ErrorContains(t, err, "broken")
}

func TestProjectSearch_ProjectOnly(t *testing.T) {
	s := ProjectSearch{
		Projects: []models.RawRow{
			project("p1", "Launch", "Work"),
			project("p2", "Garden", "Home"),
		},
		Notes:       []models.RawRow{note("n1", testutil.LiveBlob(), nil, "Launch")},
		ProjectOnly: true,
	}

	got, err := testAssembler(1).Assemble(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{
		{Title: "Launch", Subtitle: `Add this note to project "Launch"`, ActionID: ":p:p1", Valid: true},
		{Title: "Garden", Subtitle: `Add this note to project "Garden"`, ActionID: ":p:p2", Valid: true},
	}, got)
}

func TestProjectSearch_WithNotes(t *testing.T) {
	s := ProjectSearch{
		Projects: []models.RawRow{project("p1", "Launch", "Work")},
		Notes: []models.RawRow{
			note("n1", testutil.LiveBlob(), nil, "Launch"),
			note("n2", testutil.DeletedBlob(), nil, "Launch"),
			note("n3", testutil.LiveBlob(), testutil.Int64(3600), "Launch"),
		},
	}

	got, err := testAssembler(3).Assemble(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{
		{Title: "Launch", Subtitle: `Open this project from "Work" Category`, ActionID: ":p:p1", Valid: true},
		{Title: "Note n1", Subtitle: `  from "Launch" Project`, ActionID: ":n:n1", Valid: true},
		{Title: "Note n3", Subtitle: `Last edit: 01 Jan 2001 01:00 from "Launch" Project`, ActionID: ":n:n3", Valid: true},
	}, got)
}

func TestProjectSearch_NoProjects(t *testing.T) {
	s := ProjectSearch{Notes: []models.RawRow{note("n1", testutil.LiveBlob(), nil, "X")}}
	got, err := testAssembler(1).Assemble(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NoResults(), got)
}

func TestProjectSearch_MalformedNoteBlob(t *testing.T) {
	s := ProjectSearch{
		Projects: []models.RawRow{project("p1", "Launch", "Work")},
		Notes:    []models.RawRow{note("n1", nil, nil, "Launch")},
	}
	_, err := testAssembler(1).Assemble(context.Background(), s)
	assert.ErrorIs(t, err, apperr.ErrMalformedArchive)
}

func TestAssemble_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []models.RawRow{note("a", testutil.LiveBlob(), nil, "P")}
	_, err := testAssembler(1).Assemble(ctx, TitleSearch{Notes: rows})
	assert.ErrorIs(t, err, context.Canceled)
}
