package provider

import (
	"regexp"
	"strings"
)

// innermostParens matches a parenthesized span containing no other parens.
var innermostParens = regexp.MustCompile(`\([^()]*\)`)

// StripAnnotations removes every parenthesized span from s, such as
// "(Unabridged)" in titles or "(read by ...)" credits in author names.
// Nested groups are removed from the inside out until none remain, and the
// remaining whitespace is collapsed. Unbalanced parens are kept.
func StripAnnotations(s string) string {
	for {
		next := innermostParens.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}
