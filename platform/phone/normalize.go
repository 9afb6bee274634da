// Package phone provides phone number parsing, normalization and matching.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// UnknownRegion is used when the caller has no country hint.
	UnknownRegion = "ZZ"

	pauseChar = ','
	waitChar  = ';'
)

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, normalizeRegion(region))
	if err != nil {
		return trimmed
	}

	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}

// NormalizeDigits strips formatting characters from a dial string while
// keeping the characters that change what gets dialed: digits, '*', '#' and
// a leading '+'. Keypad letters are converted to their digits.
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '*', r == '#':
			b.WriteRune(r)
		case r == '+':
			if b.Len() == 0 {
				b.WriteRune(r)
			}
		default:
			if d, ok := keypadDigit(r); ok {
				b.WriteByte(d)
			}
		}
	}
	return b.String()
}

// NetworkPortion returns the normalized dialable characters before the first
// pause or wait separator.
func NetworkPortion(s string) string {
	return NormalizeDigits(networkSegment(s))
}

// PostDialPortion returns everything from the first pause or wait separator
// on, keeping only dialable characters and the separators themselves.
func PostDialPortion(s string) string {
	idx := strings.IndexAny(s, ",;")
	if idx < 0 {
		return ""
	}

	var b strings.Builder
	for _, r := range s[idx:] {
		switch {
		case r >= '0' && r <= '9', r == '*', r == '#', r == pauseChar, r == waitChar:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func networkSegment(s string) string {
	if idx := strings.IndexAny(s, ",;"); idx >= 0 {
		return s[:idx]
	}
	return s
}

func normalizeRegion(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return UnknownRegion
	}
	return region
}

func keypadDigit(r rune) (byte, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
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

// MinMatchLength is how many trailing digits two numbers must share before
// they are worth comparing in full.
const MinMatchLength = 7

// MinMatch returns the trailing MinMatchLength digits of the network portion,
// or all of them when the number is shorter. Stores index on it to find
// candidate matches cheaply.
func MinMatch(n CanonicalNumber) string {
	digits := digitsOnly(n.NetworkPortion)
	if len(digits) > MinMatchLength {
		return digits[len(digits)-MinMatchLength:]
	}
	return digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
