package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const agendaSchemaSQL = `
CREATE TABLE ZCATEGORY (
	Z_PK   INTEGER PRIMARY KEY,
	ZTITLE TEXT
);

CREATE TABLE ZPROJECT (
	Z_PK        INTEGER PRIMARY KEY,
	ZIDENTIFIER TEXT NOT NULL,
	ZTITLE      TEXT,
	ZCATEGORY   INTEGER
);

CREATE TABLE ZNOTE (
	Z_PK          INTEGER PRIMARY KEY,
	ZIDENTIFIER   TEXT NOT NULL,
	ZTITLE        TEXT,
	ZPROPERTIES   BLOB,
	ZMODIFIEDDATE REAL,
	ZPROJECT      INTEGER
);
`

// Category is a fixture category row.
type Category struct {
	PK    int
	Title string
}

// Project is a fixture project row.
type Project struct {
	PK         int
	ID         string
	Title      string
	CategoryPK int
}

// Note is a fixture note row. A nil Modified stores NULL.
type Note struct {
	ID         string
	Title      string
	Properties []byte
	Modified   *float64
	ProjectPK  int
}

// Fixture describes the contents of a throwaway Agenda store.
type Fixture struct {
	Categories []Category
	Projects   []Project
	Notes      []Note
}

// AgendaDB writes f to a fresh SQLite file and returns its path.
func AgendaDB(t *testing.T, f Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agenda.sqlite")

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.Exec(agendaSchemaSQL); err != nil {
		t.Fatalf("apply agenda schema: %v", err)
	}
	for _, c := range f.Categories {
		if _, err := conn.Exec(`INSERT INTO ZCATEGORY (Z_PK, ZTITLE) VALUES (?, ?)`, c.PK, c.Title); err != nil {
			t.Fatalf("insert category: %v", err)
		}
	}
	for _, p := range f.Projects {
		if _, err := conn.Exec(`INSERT INTO ZPROJECT (Z_PK, ZIDENTIFIER, ZTITLE, ZCATEGORY) VALUES (?, ?, ?, ?)`,
			p.PK, p.ID, p.Title, p.CategoryPK); err != nil {
			t.Fatalf("insert project: %v", err)
		}
	}
	for _, n := range f.Notes {
		var modified any
		if n.Modified != nil {
			modified = *n.Modified
		}
		if _, err := conn.Exec(`INSERT INTO ZNOTE (ZIDENTIFIER, ZTITLE, ZPROPERTIES, ZMODIFIEDDATE, ZPROJECT) VALUES (?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Properties, modified, n.ProjectPK); err != nil {
			t.Fatalf("insert note: %v", err)
		}
	}
	return path
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
