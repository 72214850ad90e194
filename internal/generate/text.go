package generate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower applies full Unicode lowercasing. A Caser keeps state, so each call
// gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func hyphenate(s string) string {
	return strings.ReplaceAll(s, " ", "-")
}
