package util

import "time"

// DateFormat is the wire format for expiry and birth dates.
const DateFormat = "2006-01-02"

// ParseDate parses a wire-format date in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, loc)
}
