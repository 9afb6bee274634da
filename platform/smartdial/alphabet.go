// Package smartdial maps contact names onto the telephone keypad and tests
// dialpad queries against names and numbers.
package smartdial

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Alphabet maps the letters of one script onto keypad digits.
type Alphabet interface {
	// Normalize folds case and strips diacritics from a single letter.
	Normalize(r rune) rune
	// Digit returns the keypad digit for a normalized letter.
	Digit(r rune) (byte, bool)
}

// LatinAlphabet is the standard ITU E.161 grouping of a-z.
type LatinAlphabet struct{}

// Normalize lower-cases r and strips its accents.
func (LatinAlphabet) Normalize(r rune) rune {
	return foldRune(r)
}

// Digit returns the keypad digit printed with letter r.
func (LatinAlphabet) Digit(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'c':
		return '2', true
	case r >= 'd' && r <= 'f':
		return '3', true
	case r >= 'g' && r <= 'i':
		return '4', true
	case r >= 'j' && r <= 'l':
		return '5', true
	case r >= 'm' && r <= 'o':
		return '6', true
	case r >= 'p' && r <= 's':
		return '7', true
	case r >= 't' && r <= 'v':
		return '8', true
	case r >= 'w' && r <= 'z':
		return '9', true
	}
	return 0, false
}

// RussianAlphabet is the Cyrillic keypad layout printed on Russian handsets.
// It also serves Ukrainian and Bulgarian contacts.
type RussianAlphabet struct{}

var russianKeypad = map[rune]byte{
	'а': '2', 'б': '2', 'в': '2', 'г': '2',
	'д': '3', 'е': '3', 'ж': '3', 'з': '3',
	'и': '4', 'й': '4', 'к': '4', 'л': '4',
	'м': '5', 'н': '5', 'о': '5', 'п': '5',
	'р': '6', 'с': '6', 'т': '6', 'у': '6',
	'ф': '7', 'х': '7', 'ц': '7', 'ч': '7',
	'ш': '8', 'щ': '8', 'ъ': '8', 'ы': '8',
	'ь': '9', 'э': '9', 'ю': '9', 'я': '9',
	'і': '4', 'ї': '4', 'є': '3', 'ґ': '2',
}

// Normalize lower-cases r and drops combining marks, so Ё dials as Е.
func (RussianAlphabet) Normalize(r rune) rune {
	return foldRune(r)
}

// Digit returns the Cyrillic keypad digit for letter r.
func (RussianAlphabet) Digit(r rune) (byte, bool) {
	d, ok := russianKeypad[r]
	return d, ok
}

// foldRune lower-cases r and drops any combining marks, so 'É' becomes 'e'
// and 'Ё' becomes 'е'.
func foldRune(r rune) rune {
	r = unicode.ToLower(r)
	if r < utf8.RuneSelf {
		return r
	}
	decomposed := norm.NFD.String(string(r))
	base, _ := utf8.DecodeRuneInString(decomposed)
	if base == utf8.RuneError {
		return r
	}
	return base
}
