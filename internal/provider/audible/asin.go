package audible

import "regexp"

var (
	// asinPattern is the shape of an Audible-issued ASIN: a leading "B"
	// followed by nine uppercase alphanumerics.
	asinPattern = regexp.MustCompile(`^B[0-9A-Z]{9}$`)

	// embeddedASINPattern finds an ASIN at the end of a bracketed fragment,
	// e.g. "Dune [B002V1OX7O]" or "Dune [audible B002V1OX7O]".
	embeddedASINPattern = regexp.MustCompile(`\[.*(B[0-9A-Z]{9})\]`)
)

// LooksLikeASIN reports whether s is exactly an Audible ASIN. It is used to
// reject input before any request is made.
func LooksLikeASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// ExtractASIN returns the ASIN embedded in a bracketed fragment of title.
func ExtractASIN(title string) (string, bool) {
	m := embeddedASINPattern.FindStringSubmatch(title)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
