package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/agenda-search/internal/agenda"
	"github.com/starford/agenda-search/internal/results"
	"github.com/starford/agenda-search/internal/searchservice"
	"github.com/starford/agenda-search/internal/testutil"
)

// testEnv sets up a fixture Agenda store, service, and router for testing.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	path := testutil.AgendaDB(t, testutil.Fixture{
		Categories: []testutil.Category{{PK: 1, Title: "Work"}},
		Projects:   []testutil.Project{{PK: 1, ID: "P1", Title: "Launch", CategoryPK: 1}},
		Notes: []testutil.Note{
			{ID: "N1", Title: "Launch notes", Properties: testutil.LiveBlob(), Modified: testutil.Float(0), ProjectPK: 1},
			{ID: "N2", Title: "Launch draft", Properties: testutil.DeletedBlob(), ProjectPK: 1},
		},
	})
	db, err := agenda.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	svc := searchservice.NewService(db, results.NewAssembler(time.UTC, 2, logger), logger)
	return NewRouter(svc, authToken != "", authToken)
}

func get(t *testing.T, h http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSearchTitles(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=launch")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "N1", resp.Items[0].ActionID)
	assert.Equal(t, `Last edit: 01 Jan 2001 from "Launch" Project`, resp.Items[0].Subtitle)
}

func TestSearchProjects(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/search?q=launch&type=p")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, ":p:P1", resp.Items[0].ActionID)
	assert.Equal(t, ":n:N1", resp.Items[1].ActionID)

	w = get(t, router, "/search?q=launch&type=p&project_only=true")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
}

func TestSearchNoResults(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/search?q=zzz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[{"title":"No search results found.","valid":false}]}`, w.Body.String())
}

func TestSearchBadParams(t *testing.T) {
	router := testEnv(t, "")
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search?q=a&type=zzz").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/search?q=a&project_only=maybe").Code)
}

func TestAction(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/action?id=:p:P1")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ActionResponse{
		Kind: "open-project",
		ID:   "P1",
		URL:  "agenda://x-callback-url/open-project?identifier=P1",
	}, resp)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/action?id=").Code)
}

func TestReady(t *testing.T) {
	router := testEnv(t, "")
	w := get(t, router, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth(t *testing.T) {
	router := testEnv(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, get(t, router, "/search?q=launch").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, router, "/search?q=launch", "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/search?q=launch", "Authorization", "Bearer secret").Code)
}
