package smartdial

import "golang.org/x/text/language"

// MapConfig holds the keypad alphabets active for a locale. Latin is always
// consulted first; Secondary covers the locale's native script, if any.
type MapConfig struct {
	Primary   Alphabet
	Secondary Alphabet
}

// LatinConfig returns a configuration that only knows a-z.
func LatinConfig() MapConfig {
	return MapConfig{Primary: LatinAlphabet{}}
}

var (
	localeTags = []language.Tag{
		language.English,
		language.Russian,
		language.Ukrainian,
		language.Bulgarian,
	}
	localeMatcher = language.NewMatcher(localeTags)
)

// ConfigForLocale picks the alphabets for the given locale.
func ConfigForLocale(tag language.Tag) MapConfig {
	cfg := LatinConfig()

	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return cfg
	}

	switch localeTags[idx] {
	case language.Russian, language.Ukrainian, language.Bulgarian:
		cfg.Secondary = RussianAlphabet{}
	}
	return cfg
}

// ConfigForLanguage parses a BCP 47 string (e.g. an Accept-Language value)
// and falls back to Latin-only on anything unparsable.
func ConfigForLanguage(value string) MapConfig {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return LatinConfig()
	}
	return ConfigForLocale(tags[0])
}
