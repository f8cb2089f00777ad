// Package normalize canonicalizes free-text stock names so the two source
// registries can be compared despite inconsistent geographic and structural
// qualifiers.
package normalize

import (
	"regexp"
	"strings"
)

// qualifierTokens lists the geographic and structural qualifiers the sources
// append to stock names. Multi-word tokens come first so "south atlantic" is
// consumed before "atlantic" alone; each token is removed independently as a
// whole word, so removal order otherwise does not matter.
var qualifierTokens = []string{
	"south atlantic",
	"gulf of mexico",
	"atlantic",
	"gulf",
	"florida",
	"keys",
	"stock",
	"complex",
	"unit",
}

var (
	qualifierRe  = regexp.MustCompile(`\b(?:` + strings.Join(qualifierTokens, "|") + `)\b`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// Name canonicalizes a species or stock name for matching: lower-cases,
// strips qualifier tokens, collapses whitespace runs, and trims. Empty or
// missing input yields the empty string; Name never fails.
func Name(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	s = qualifierRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
