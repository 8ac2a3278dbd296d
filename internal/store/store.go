package store

import "time"

// midnightUTC normalizes a timestamp to midnight UTC on the same calendar
// day, which is how date-valued columns are stored throughout the schema.
func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
