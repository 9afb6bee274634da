package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// CanonicalNumber is the parsed view of a raw dial string. RawInput is always
// the exact string handed to Parse, whether or not parsing succeeded.
type CanonicalNumber struct {
	RawInput    string
	CountryHint string
	// Parsed reports whether libphonenumber accepted the network portion.
	Parsed bool
	// Valid reports whether the parsed number is a valid, dialable number.
	Valid bool
	// E164 is set only when Valid.
	E164 string
	// NetworkPortion is the normalized digits before any post-dial separator.
	NetworkPortion string
	// PostDial holds the DTMF continuation, separators included.
	PostDial string

	number *phonenumbers.PhoneNumber
}

// Parse never fails: an input libphonenumber rejects comes back with
// Parsed=false and everything else derived from the raw string.
func Parse(raw, defaultRegion string) CanonicalNumber {
	n := CanonicalNumber{
		RawInput:    raw,
		CountryHint: normalizeRegion(defaultRegion),
	}
	if raw == "" {
		return n
	}

	n.NetworkPortion = NetworkPortion(raw)
	n.PostDial = PostDialPortion(raw)

	// USSD and MMI codes get mangled by full parsing.
	if IsServiceCode(raw) {
		return n
	}

	segment := strings.TrimSpace(networkSegment(raw))
	if segment == "" {
		return n
	}

	parsed, err := phonenumbers.Parse(segment, n.CountryHint)
	if err != nil {
		return n
	}

	n.number = parsed
	n.Parsed = true
	if phonenumbers.IsValidNumber(parsed) {
		n.Valid = true
		n.E164 = phonenumbers.Format(parsed, phonenumbers.E164)
	}
	return n
}

// IsServiceCode reports whether raw looks like a USSD/MMI sequence: any '#'
// or a leading '*'.
func IsServiceCode(raw string) bool {
	return strings.Contains(raw, "#") || strings.HasPrefix(strings.TrimSpace(raw), "*")
}

// IsEmpty reports whether the raw input had zero length.
func (n CanonicalNumber) IsEmpty() bool {
	return len(n.RawInput) == 0
}

// Normalize returns the E.164 form when the number is valid, or a digits-only
// rendition of the raw input otherwise. Post-dial digits are always kept.
func Normalize(n CanonicalNumber) string {
	if n.Valid {
		return n.E164 + n.PostDial
	}
	return n.NetworkPortion + n.PostDial
}

// Region returns the region the number belongs to, or the country hint when
// the number could not be parsed.
func Region(n CanonicalNumber) string {
	if n.number == nil {
		return n.CountryHint
	}
	if region := phonenumbers.GetRegionCodeForNumber(n.number); region != "" {
		return region
	}
	return n.CountryHint
}

// FormatForDisplay renders the number nationally when it belongs to
// userRegion and internationally otherwise. Invalid numbers are shown as
// entered.
func FormatForDisplay(n CanonicalNumber, userRegion string) string {
	if !n.Valid {
		return strings.TrimSpace(n.RawInput)
	}

	format := phonenumbers.INTERNATIONAL
	if Region(n) == normalizeRegion(userRegion) {
		format = phonenumbers.NATIONAL
	}
	return phonenumbers.Format(n.number, format) + n.PostDial
}

// Geolocation returns the offline geocoder description (e.g. "Mountain View, CA")
// for valid numbers, in the given language.
func Geolocation(n CanonicalNumber, lang string) string {
	if !n.Valid {
		return ""
	}
	if lang == "" {
		lang = "en"
	}
	location, err := phonenumbers.GetGeocodingForNumber(n.number, lang)
	if err != nil {
		return ""
	}
	return location
}
