// Package i18n loads the embedded string bundles and picks one per request
// from the Accept-Language header.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Bundle holds every loaded locale. The first supported tag is the fallback.
type Bundle struct {
	tags    []language.Tag
	texts   []map[string]string
	matcher language.Matcher
}

// Load reads the embedded locales. English is always the fallback.
func Load() (*Bundle, error) {
	return LoadFS(localeFiles, "locales", language.English)
}

// LoadFS reads every <tag>.yaml in dir of fsys.
func LoadFS(fsys fs.FS, dir string, fallback language.Tag) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	b := &Bundle{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		texts := make(map[string]string)
		if err := yaml.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		if tag.String() == fallback.String() {
			b.tags = append([]language.Tag{tag}, b.tags...)
			b.texts = append([]map[string]string{texts}, b.texts...)
			continue
		}
		b.tags = append(b.tags, tag)
		b.texts = append(b.texts, texts)
	}

	if len(b.tags) == 0 || b.tags[0].String() != fallback.String() {
		return nil, fmt.Errorf("fallback locale %s not found", fallback)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Tags lists the supported locales, fallback first.
func (b *Bundle) Tags() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Localizer returns the strings for the best match of an Accept-Language
// header value. Malformed headers get the fallback.
func (b *Bundle) Localizer(acceptLanguage string) *Localizer {
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		return b.localizerAt(0, b.tags[0])
	}
	tag, index, _ := b.matcher.Match(desired...)
	return b.localizerAt(index, tag)
}

func (b *Bundle) localizerAt(index int, requested language.Tag) *Localizer {
	return &Localizer{
		tag:       requested,
		base:      b.tags[index],
		texts:     b.texts[index],
		fallbacks: b.texts[0],
	}
}

// Localizer resolves keys for one locale, falling back to the default bundle.
type Localizer struct {
	tag       language.Tag
	base      language.Tag
	texts     map[string]string
	fallbacks map[string]string
}

// Tag is the requested tag as matched, which may carry a region.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Language is the base language of the chosen bundle, e.g. "nl".
func (l *Localizer) Language() string {
	base, _ := l.base.Base()
	return base.String()
}

// Text returns the string for key, or "" when no bundle defines it.
func (l *Localizer) Text(key string) string {
	if text, ok := l.texts[key]; ok {
		return text
	}
	return l.fallbacks[key]
}
