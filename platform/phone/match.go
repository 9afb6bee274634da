package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// IsMatch reports whether two numbers identify the same line.
//
// Parsed numbers are compared with libphonenumber's match tiers (short NSN,
// NSN or exact); anything else falls back to comparing normalized network
// portions. In both cases the post-dial portions must be identical.
func IsMatch(a, b CanonicalNumber) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}

	if a.PostDial != b.PostDial {
		return false
	}

	if a.number != nil && b.number != nil {
		switch phonenumbers.IsNumberMatchWithNumbers(a.number, b.number) {
		case phonenumbers.SHORT_NSN_MATCH, phonenumbers.NSN_MATCH, phonenumbers.EXACT_MATCH:
			return true
		default:
			return false
		}
	}

	if a.NetworkPortion == "" && b.NetworkPortion == "" {
		return strings.TrimSpace(a.RawInput) == strings.TrimSpace(b.RawInput)
	}
	return a.NetworkPortion == b.NetworkPortion
}
