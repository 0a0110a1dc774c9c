package parser

import "strings"

// between returns the text after the first open and before the next close.
func between(s, open, close string) (string, bool) {
	_, rest, ok := strings.Cut(s, open)
	if !ok {
		return "", false
	}
	inner, _, ok := strings.Cut(rest, close)
	if !ok {
		return "", false
	}
	return inner, true
}

// firstToken returns s up to the first whitespace.
func firstToken(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}
