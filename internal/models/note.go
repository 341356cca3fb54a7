// Package models defines the domain types shared by the search pipeline.
package models

// EntityKind distinguishes the two kinds of rows the store returns.
type EntityKind uint8

// Entity kinds.
const (
	KindNote EntityKind = iota
	KindProject
)

func (k EntityKind) String() string {
	if k == KindProject {
		return "project"
	}
	return "note"
}

// RawRow is one row returned by the query engine.
type RawRow struct {
	Kind  EntityKind
	ID    string
	Title string
	// ValidityBlob is the archived note properties; projects have none.
	ValidityBlob []byte
	// RawTimestamp counts seconds from 2001-01-01T00:00:00Z; nil when unknown.
	RawTimestamp *int64
	// ParentTitle is the containing project for notes and the category for projects.
	ParentTitle string
}

// Entry is one line of launcher output.
type Entry struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	ActionID string `json:"arg,omitempty"`
	Valid    bool   `json:"valid"`
}
