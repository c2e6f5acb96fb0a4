package models

import "time"

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// Day truncates a timestamp to its calendar date at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
