package normalize

import (
	"strings"
	"time"
)

// Date formats seen in SIGESA exports and admin-loaded reference workbooks:
// calendar ISO plus the locale day/month/year textual forms.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// ParseDate attempts to parse a date string in multiple common formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, fmt := range dateFormats {
		if t, err := time.Parse(fmt, s); err == nil {
			return &t
		}
	}
	return nil
}

// DateInRange reports whether d falls inside the [from, to] interval given as
// raw text. An unparseable bound fails containment: the schedule row simply
// never matches, mirroring lookup-miss semantics.
func DateInRange(d time.Time, from, to string) bool {
	f := ParseDate(from)
	t := ParseDate(to)
	if f == nil || t == nil {
		return false
	}
	return !d.Before(*f) && !d.After(*t)
}
