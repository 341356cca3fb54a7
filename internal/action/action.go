// Package action encodes and decodes the identifiers the launcher passes
// back when the user picks an entry.
package action

import (
	"fmt"
	"net/url"
	"strings"
)

// Identifier prefixes. A bare identifier opens a note.
const (
	ProjectPrefix = ":p:"
	AttachPrefix  = ":n:"
)

// Kind is what selecting an entry does.
type Kind uint8

// Action kinds.
const (
	OpenNote Kind = iota
	OpenProject
	AttachNote
)

func (k Kind) String() string {
	switch k {
	case OpenProject:
		return "open-project"
	case AttachNote:
		return "attach-note"
	}
	return "open-note"
}

// Action is a decoded action identifier.
type Action struct {
	Kind Kind
	ID   string
}

// NoteID returns the identifier for opening a note directly.
func NoteID(id string) string { return id }

// ProjectID returns the identifier for opening a project.
func ProjectID(id string) string { return ProjectPrefix + id }

// AttachID returns the identifier for attaching a note found by project title.
func AttachID(id string) string { return AttachPrefix + id }

// Parse decodes an identifier produced by NoteID, ProjectID or AttachID.
func Parse(arg string) (Action, error) {
	var a Action
	switch {
	case strings.HasPrefix(arg, ProjectPrefix):
		a = Action{Kind: OpenProject, ID: strings.TrimPrefix(arg, ProjectPrefix)}
	case strings.HasPrefix(arg, AttachPrefix):
		a = Action{Kind: AttachNote, ID: strings.TrimPrefix(arg, AttachPrefix)}
	default:
		a = Action{Kind: OpenNote, ID: arg}
	}
	if strings.TrimSpace(a.ID) == "" {
		return Action{}, fmt.Errorf("action: empty identifier in %q", arg)
	}
	return a, nil
}

// String re-encodes the action as an identifier.
func (a Action) String() string {
	switch a.Kind {
	case OpenProject:
		return ProjectID(a.ID)
	case AttachNote:
		return AttachID(a.ID)
	}
	return NoteID(a.ID)
}

// URL returns the agenda:// x-callback URL that performs the action.
// Attaching opens the note so the host can move it.
func (a Action) URL() string {
	path := "open-note"
	if a.Kind == OpenProject {
		path = "open-project"
	}
	q := url.Values{"identifier": {a.ID}}
	return "agenda://x-callback-url/" + path + "?" + q.Encode()
}
