package normalize

import (
	"strconv"
	"strings"
)

// ParseNumber coerces raw spreadsheet text to a float64. It accepts the
// locale comma decimal separator ("1234,5"), dotted thousands with a comma
// decimal ("1.234,56"), and plain ParseFloat syntax. Returns nil if the input
// is empty or unparseable.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") {
		// "1.234,56" → "1234.56"; "1234,5" → "1234.5"
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// NilIfEmpty returns nil for whitespace-only input, else a pointer to the
// trimmed string.
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
