package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Spanish-accented characters folded to ASCII for header matching.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

// Header lowercases a spreadsheet column header, folds accents, and collapses
// whitespace runs to single underscores, yielding the canonical field-name
// form. This is exact-name normalization only; there is no fuzzy matching.
func Header(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = accentFolder.Replace(s)
	s = multiSpace.ReplaceAllString(s, "_")
	return s
}
