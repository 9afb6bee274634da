package phone

import "testing"

var sampleInputs = []string{
	"",
	"   ",
	"+1 (650) 253-0000",
	"6502530000",
	"650-253-0000,123",
	"650-253-0000;9#",
	"*67",
	"*#06#",
	"#31#6502530000",
	"1-800-FLOWERS",
	"abc",
	"+44 20 7031 3000",
	"020 7031 3000",
	"112",
	"+31 6 12345678",
}

func TestParsePreservesRawInput(t *testing.T) {
	for _, raw := range sampleInputs {
		for _, region := range []string{"US", "GB", "", "nl"} {
			n := Parse(raw, region)
			if n.RawInput != raw {
				t.Fatalf("raw input changed for %q/%q: got %q", raw, region, n.RawInput)
			}
		}
	}
}

func TestParseValidUSNumber(t *testing.T) {
	n := Parse("+1 (650) 253-0000", "US")
	if !n.Valid {
		t.Fatal("expected number to be valid")
	}
	if got := Normalize(n); got != "+16502530000" {
		t.Fatalf("expected +16502530000, got %s", got)
	}
}

func TestParseSkipsServiceCodes(t *testing.T) {
	for _, raw := range []string{"*67", "*#06#", "#31#6502530000", "  *228"} {
		n := Parse(raw, "US")
		if n.Parsed || n.Valid {
			t.Fatalf("expected %q to bypass parsing", raw)
		}
		if n.RawInput != raw {
			t.Fatalf("expected raw input %q to be kept, got %q", raw, n.RawInput)
		}
	}

	if got := Normalize(Parse("*67", "US")); got != "*67" {
		t.Fatalf("expected *67, got %s", got)
	}
}

func TestParseKeepsPostDialDigits(t *testing.T) {
	n := Parse("650-253-0000,,123;4", "US")
	if !n.Valid {
		t.Fatal("expected network portion to parse")
	}
	if n.PostDial != ",,123;4" {
		t.Fatalf("unexpected post-dial %q", n.PostDial)
	}
	if got := Normalize(n); got != "+16502530000,,123;4" {
		t.Fatalf("unexpected normalized form %q", got)
	}
}

func TestHashInPostDialIsServiceCode(t *testing.T) {
	raw := "650-253-0000,,123;4#"
	n := Parse(raw, "US")
	if n.Valid || n.Parsed {
		t.Fatalf("expected service-code bypass, got valid=%v parsed=%v", n.Valid, n.Parsed)
	}
	if n.RawInput != raw {
		t.Fatalf("expected raw input kept, got %q", n.RawInput)
	}
	if n.E164 != "" {
		t.Fatalf("expected no E164, got %q", n.E164)
	}
}

func TestNormalizeInvalidStripsFormatting(t *testing.T) {
	n := Parse("(555) 01-23", "US")
	if n.Valid {
		t.Fatal("expected number to be invalid")
	}
	if got := Normalize(n); got != "5550123" {
		t.Fatalf("expected 5550123, got %s", got)
	}
}

func TestIsMatchEmpty(t *testing.T) {
	empty := Parse("", "US")
	if IsMatch(empty, empty) {
		t.Fatal("empty number must not match itself")
	}
	if IsMatch(empty, Parse("6502530000", "US")) {
		t.Fatal("empty number must not match anything")
	}
}

func TestIsMatchReflexiveAndSymmetric(t *testing.T) {
	numbers := make([]CanonicalNumber, 0, len(sampleInputs))
	for _, raw := range sampleInputs {
		numbers = append(numbers, Parse(raw, "US"))
	}

	for _, n := range numbers {
		if n.RawInput != "" && !IsMatch(n, n) {
			t.Fatalf("expected %q to match itself", n.RawInput)
		}
	}

	for _, a := range numbers {
		for _, b := range numbers {
			if IsMatch(a, b) != IsMatch(b, a) {
				t.Fatalf("IsMatch not symmetric for %q and %q", a.RawInput, b.RawInput)
			}
		}
	}
}

func TestIsMatchNationalAndInternational(t *testing.T) {
	if !IsMatch(Parse("6502530000", "US"), Parse("+1 650-253-0000", "US")) {
		t.Fatal("national and international forms should match")
	}
	if IsMatch(Parse("6502530000", "US"), Parse("6502530001", "US")) {
		t.Fatal("different numbers should not match")
	}
}

func TestIsMatchRequiresSamePostDial(t *testing.T) {
	base := Parse("6502530000", "US")
	withPause := Parse("6502530000,123", "US")
	if IsMatch(base, withPause) {
		t.Fatal("numbers with different post-dial portions should not match")
	}
	if !IsMatch(withPause, Parse("+1 650 253 0000,123", "US")) {
		t.Fatal("numbers with identical post-dial portions should match")
	}
}

func TestIsMatchFallsBackForUnparsed(t *testing.T) {
	if !IsMatch(Parse("*67", "US"), Parse("*67", "GB")) {
		t.Fatal("identical service codes should match")
	}
	if IsMatch(Parse("*67", "US"), Parse("*68", "US")) {
		t.Fatal("different service codes should not match")
	}
	if IsMatch(Parse("abc", "US"), Parse("xyz", "US")) {
		t.Fatal("unrelated unparsable inputs should not match")
	}
}

func TestPortions(t *testing.T) {
	if got := NetworkPortion("+1 (650) 253-0000,12;3"); got != "+16502530000" {
		t.Fatalf("unexpected network portion %q", got)
	}
	if got := PostDialPortion("+1 (650) 253-0000,12;3"); got != ",12;3" {
		t.Fatalf("unexpected post-dial portion %q", got)
	}
	if got := PostDialPortion("6502530000"); got != "" {
		t.Fatalf("expected empty post-dial portion, got %q", got)
	}
	if got := NormalizeDigits("1-800-FLOWERS"); got != "18003569377" {
		t.Fatalf("unexpected keypad conversion %q", got)
	}
}

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164(" 06 12345678 ", "NL"); got != "+31612345678" {
		t.Fatalf("expected +31612345678, got %s", got)
	}
	if got := NormalizeE164("not a number", "NL"); got != "not a number" {
		t.Fatalf("expected input to be returned, got %s", got)
	}
}

func TestMinMatch(t *testing.T) {
	if got := MinMatch(Parse("+1 (650) 253-0000", "US")); got != "2530000" {
		t.Fatalf("expected 2530000, got %q", got)
	}
	if got := MinMatch(Parse("112", "US")); got != "112" {
		t.Fatalf("short numbers keep every digit, got %q", got)
	}
	if got := MinMatch(Parse("650 253 0000,,123", "US")); got != "2530000" {
		t.Fatalf("post-dial digits must not count, got %q", got)
	}
}
