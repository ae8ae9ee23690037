// Package timeutil converts between the calendar strings used by the close
// approach data set and time.Time values. All values are UTC.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	// CalendarLayout is the close approach data set's calendar date format,
	// e.g. "2029-Apr-13 21:46".
	CalendarLayout = "2006-Jan-02 15:04"
	// CalendarDateLayout is CalendarLayout without a time of day.
	CalendarDateLayout = "2006-Jan-02"
	// DisplayLayout is the minute precision format used for output.
	DisplayLayout = "2006-01-02 15:04"
	// DateLayout is the ISO calendar date format accepted by filters.
	DateLayout = "2006-01-02"
)

// ParseCalendar parses a close approach calendar string. A date without a
// time of day resolves to midnight UTC.
func ParseCalendar(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{CalendarLayout, CalendarDateLayout, DisplayLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized calendar date %q", s)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD) as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// Format renders t at minute precision, the precision of the source data.
func Format(t time.Time) string {
	return t.UTC().Format(DisplayLayout)
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
