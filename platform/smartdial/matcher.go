package smartdial

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var (
	t9QueryPattern     = regexp.MustCompile(`^[0-9\-()]+$`)
	numberQueryPattern = regexp.MustCompile(`^\+?[0-9.\-()]+$`)
)

// Match describes where a dialpad query matched a name, in rune offsets.
// For substring matches Start/End delimit the matched run (End exclusive);
// for initials matches Initials lists the offsets of the matched letters.
type Match struct {
	Start    int
	End      int
	Initials []int
}

// Matcher tests dialpad queries against contact names and numbers. It holds
// no mutable state and is safe for concurrent use.
type Matcher struct {
	cfg MapConfig
}

// NewMatcher creates a Matcher for the given alphabet configuration.
func NewMatcher(cfg MapConfig) *Matcher {
	if cfg.Primary == nil {
		cfg.Primary = LatinAlphabet{}
	}
	return &Matcher{cfg: cfg}
}

// ToT9 replaces every letter with its keypad digit. Anything that is not a
// letter of a configured alphabet is left as is.
func (m *Matcher) ToT9(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if d, ok := m.letterDigit(r); ok {
			b.WriteByte(d)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NameMatchesT9Query reports whether a dialpad query matches name, either
// as a run of keypad digits starting at a word boundary or as the initials
// of consecutive words.
func (m *Matcher) NameMatchesT9Query(query, name string) bool {
	_, ok := m.MatchT9(query, name)
	return ok
}

// MatchT9 is NameMatchesT9Query that also reports the matched positions.
func (m *Matcher) MatchT9(query, name string) (Match, bool) {
	if !t9QueryPattern.MatchString(query) {
		return Match{}, false
	}
	digits := digitsOnly(query)
	if digits == "" {
		return Match{}, false
	}

	nameRunes := []rune(name)
	if match, ok := m.matchWordPrefix(digits, nameRunes); ok {
		return match, true
	}
	return m.matchInitials(digits, nameRunes)
}

func (m *Matcher) matchWordPrefix(digits string, name []rune) (Match, bool) {
	for start := range name {
		if unicode.IsSpace(name[start]) {
			continue
		}
		if start > 0 && !unicode.IsSpace(name[start-1]) {
			continue
		}

		matched := 0
		for i := start; i < len(name); i++ {
			d, ok := m.dialDigit(name[i])
			if !ok {
				continue
			}
			if d != digits[matched] {
				break
			}
			matched++
			if matched == len(digits) {
				return Match{Start: start, End: i + 1}, true
			}
		}
	}
	return Match{}, false
}

func (m *Matcher) matchInitials(digits string, name []rune) (Match, bool) {
	starts := wordStarts(name)
	for first := range starts {
		positions := make([]int, 0, len(digits))
		for w := first; w < len(starts) && len(positions) < len(digits); w++ {
			d, ok := m.dialDigit(name[starts[w]])
			if !ok || d != digits[len(positions)] {
				break
			}
			positions = append(positions, starts[w])
		}
		if len(positions) == len(digits) {
			return Match{
				Start:    positions[0],
				End:      positions[len(positions)-1] + 1,
				Initials: positions,
			}, true
		}
	}
	return Match{}, false
}

// NumberMatchesQuery reports whether query is shaped like a phone number and
// its digits appear contiguously in number's digits.
func (m *Matcher) NumberMatchesQuery(query, number string) bool {
	return NumberMatchesQuery(query, number)
}

// NumberMatchesQuery is the alphabet-independent number test.
func NumberMatchesQuery(query, number string) bool {
	compact := strings.Join(strings.Fields(query), "")
	if !numberQueryPattern.MatchString(compact) {
		return false
	}
	queryDigits := digitsOnly(compact)
	if queryDigits == "" {
		return false
	}
	return strings.Contains(digitsOnly(number), queryDigits)
}

// NameContainsQuery reports whether query appears in name at a word
// boundary, ignoring case. No keypad mapping is involved.
func (m *Matcher) NameContainsQuery(query, name string) bool {
	return NameContainsQuery(query, name)
}

// NameContainsQuery is the alphabet-independent literal name test.
func NameContainsQuery(query, name string) bool {
	if name == "" || strings.TrimSpace(query) == "" {
		return false
	}

	folded := cases.Fold().String(name)
	needle := cases.Fold().String(query)

	offset := 0
	for {
		idx := strings.Index(folded[offset:], needle)
		if idx < 0 {
			return false
		}
		pos := offset + idx
		if pos == 0 {
			return true
		}
		prev := []rune(folded[:pos])
		if unicode.IsSpace(prev[len(prev)-1]) {
			return true
		}
		offset = pos + 1
		if offset >= len(folded) {
			return false
		}
	}
}

// dialDigit returns the keypad digit a name character contributes: letters
// map through the alphabets, ASCII digits stand for themselves.
func (m *Matcher) dialDigit(r rune) (byte, bool) {
	if r >= '0' && r <= '9' {
		return byte(r), true
	}
	return m.letterDigit(r)
}

func (m *Matcher) letterDigit(r rune) (byte, bool) {
	if !unicode.IsLetter(r) {
		return 0, false
	}
	if d, ok := m.cfg.Primary.Digit(m.cfg.Primary.Normalize(r)); ok {
		return d, true
	}
	if m.cfg.Secondary != nil {
		return m.cfg.Secondary.Digit(m.cfg.Secondary.Normalize(r))
	}
	return 0, false
}

func wordStarts(name []rune) []int {
	var starts []int
	for i, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		if i == 0 || unicode.IsSpace(name[i-1]) {
			starts = append(starts, i)
		}
	}
	return starts
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
