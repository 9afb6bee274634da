package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"<b>Acme</b> Plumbing":           "Acme Plumbing",
		"&lt;script&gt;x&lt;/script&gt;": "x",
		"Tom &amp; Jerry":                "Tom & Jerry",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Fatalf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestName(t *testing.T) {
	cases := map[string]string{
		"  Alice \t Smith  ":   "Alice Smith",
		"Bob\x00\x07 Jones":    "Bob Jones",
		"Eve\u200b Adams":      "Eve Adams",
		"<i>Иван</i>   Петров": "Иван Петров",
		"":                     "",
	}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Fatalf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNameTruncates(t *testing.T) {
	got := Name(strings.Repeat("é", MaxNameLength+10))
	if n := utf8.RuneCountInString(got); n != MaxNameLength {
		t.Fatalf("expected %d runes, got %d", MaxNameLength, n)
	}
}
