package core

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for rating dates.
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Today returns t's calendar date in UTC.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
