package cocoatime

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  *int64
		want string
	}{
		{name: "absent", raw: nil, want: "Open note"},
		{name: "reference instant is midnight", raw: ptr(0), want: "Last edit: 01 Jan 2001"},
		{name: "one in the morning", raw: ptr(3600), want: "Last edit: 01 Jan 2001 01:00"},
		{name: "seconds past midnight still date only", raw: ptr(59), want: "Last edit: 01 Jan 2001"},
		{name: "one minute past midnight", raw: ptr(60), want: "Last edit: 01 Jan 2001 00:01"},
		{name: "afternoon", raw: ptr(86400*31 + 15*3600 + 45*60), want: "Last edit: 01 Feb 2001 15:45"},
		{name: "before the reference date", raw: ptr(-86400), want: "Last edit: 31 Dec 2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.raw, time.UTC, "Open note"))
		})
	}
}

func TestFormat_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Midnight UTC is 19:00 the previous evening in New York.
	assert.Equal(t, "Last edit: 31 Dec 2000 19:00", Format(ptr(0), loc, ""))
	// Midnight in New York drops the clock.
	assert.Equal(t, "Last edit: 01 Jan 2001", Format(ptr(5*3600), loc, ""))
}

func TestToTime(t *testing.T) {
	got := ToTime(0, time.UTC)
	assert.Equal(t, int64(UnixOffset), got.Unix())
	assert.Equal(t, time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}
