package sanitize

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlainText makes a stored label safe to hand to a renderer that may emit
// HTML. Control characters are removed and markup characters escaped.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, s)

	return html.EscapeString(s)
}

// Truncate shortens s to keep runes followed by suffix when it is longer
// than max runes. Shorter strings are returned unchanged.
func Truncate(s string, max, keep int, suffix string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if keep > len(runes) {
		keep = len(runes)
	}
	return strings.TrimRightFunc(string(runes[:keep]), unicode.IsSpace) + suffix
}
