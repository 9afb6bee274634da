// Package sanitize cleans display text received from clients and remote
// identity sources before it is stored or shown on an incoming call.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// MaxNameLength caps a display name in runes.
const MaxNameLength = 128

// zeroWidthJoiner is kept so emoji sequences in names survive.
const zeroWidthJoiner = '\u200d'

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = html.UnescapeString(result)
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Name strips markup and control characters from a display name, collapses
// runs of whitespace and truncates it to MaxNameLength runes.
func Name(s string) string {
	s = StripHTML(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	n := 0
	for _, r := range s {
		if n == MaxNameLength {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r) && r != zeroWidthJoiner:
			continue
		}
		if space {
			if n+1 == MaxNameLength {
				break
			}
			b.WriteByte(' ')
			n++
			space = false
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
