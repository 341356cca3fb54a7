package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		arg  string
		want Action
		url  string
	}{
		{arg: "ABC-123", want: Action{Kind: OpenNote, ID: "ABC-123"}, url: "agenda://x-callback-url/open-note?identifier=ABC-123"},
		{arg: ":p:P1", want: Action{Kind: OpenProject, ID: "P1"}, url: "agenda://x-callback-url/open-project?identifier=P1"},
		{arg: ":n:N 2", want: Action{Kind: AttachNote, ID: "N 2"}, url: "agenda://x-callback-url/open-note?identifier=N+2"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := Parse(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.arg, got.String())
			assert.Equal(t, tt.url, got.URL())
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, arg := range []string{"", ":p:", ":n:", "   "} {
		_, err := Parse(arg)
		assert.Error(t, err, "arg %q", arg)
	}
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "x", NoteID("x"))
	assert.Equal(t, ":p:x", ProjectID("x"))
	assert.Equal(t, ":n:x", AttachID("x"))
}
