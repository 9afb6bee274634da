package i18n

import (
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"
)

func TestLocalizerMatchesAcceptLanguage(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cases := []struct {
		header string
		want   string
		lang   string
	}{
		{"nl-NL,nl;q=0.9,en;q=0.8", "Geblokkeerd", "nl"},
		{"de-CH", "Blockiert", "de"},
		{"ru", "Заблокирован", "ru"},
		{"fr-FR", "Blocked", "en"},
		{"", "Blocked", "en"},
		{";;;garbage", "Blocked", "en"},
	}
	for _, tc := range cases {
		l := b.Localizer(tc.header)
		if got := l.Text("blocked"); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.header, tc.want, got)
		}
		if l.Language() != tc.lang {
			t.Fatalf("%q: expected language %s, got %s", tc.header, tc.lang, l.Language())
		}
	}
}

func TestLocalizerFallsBackPerKey(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("spam: Spam\nunknown: Unknown\n")},
		"l/nl.yaml": {Data: []byte("unknown: Onbekend\n")},
	}
	b, err := LoadFS(fsys, "l", language.English)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	l := b.Localizer("nl")
	if l.Text("unknown") != "Onbekend" || l.Text("spam") != "Spam" {
		t.Fatalf("unexpected texts %q %q", l.Text("unknown"), l.Text("spam"))
	}
	if l.Text("missing") != "" {
		t.Fatal("missing keys should resolve to empty text")
	}
}

func TestLoadFSRequiresFallback(t *testing.T) {
	fsys := fstest.MapFS{"l/nl.yaml": {Data: []byte("spam: Spam\n")}}
	if _, err := LoadFS(fsys, "l", language.English); err == nil {
		t.Fatal("expected error without fallback locale")
	}
}

func TestBundlesDefineTheSameKeys(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 1; i < len(b.texts); i++ {
		for key := range b.texts[0] {
			if _, ok := b.texts[i][key]; !ok {
				t.Fatalf("%s is missing %q", b.tags[i], key)
			}
		}
	}
}
