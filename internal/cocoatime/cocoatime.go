// Package cocoatime formats Cocoa reference-date timestamps for display.
package cocoatime

import "time"

// UnixOffset is the number of seconds between the Unix epoch and the Cocoa
// reference date, 2001-01-01T00:00:00Z.
const UnixOffset int64 = 978307200

const (
	dateLayout     = "02 Jan 2006"
	dateTimeLayout = "02 Jan 2006 15:04"
	prefix         = "Last edit: "
)

// ToTime converts seconds since the Cocoa reference date to a time in loc.
func ToTime(raw int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(raw+UnixOffset, 0).In(loc)
}

// Format renders a last-edit label. A nil timestamp yields fallback. A time
// of day of exactly 00:00 is taken to mean the store only knows the date,
// so the clock is left out.
func Format(raw *int64, loc *time.Location, fallback string) string {
	if raw == nil {
		return fallback
	}
	t := ToTime(*raw, loc)
	if t.Hour() == 0 && t.Minute() == 0 {
		return prefix + t.Format(dateLayout)
	}
	return prefix + t.Format(dateTimeLayout)
}
