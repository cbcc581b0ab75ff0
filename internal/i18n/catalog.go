// Package i18n holds the process-wide translation catalog. It is loaded once
// at startup and only read afterwards.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultLocale is used for unknown locales and for keys missing in a locale.
const DefaultLocale = "us"

//go:embed locales/*.yaml
var localeFiles embed.FS

// Translator renders translation keys for one locale.
type Translator interface {
	Translate(key string, args ...interface{}) string
	Locale() string
}

// Catalog is an immutable set of locale tables.
type Catalog struct {
	tables   map[string]map[string]string
	fallback string
}

// Load parses the embedded locale files.
func Load() (*Catalog, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}

	tables := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := localeFiles.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", entry.Name(), err)
		}
		table := map[string]string{}
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", entry.Name(), err)
		}
		tables[strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))] = table
	}

	if _, ok := tables[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q is missing", DefaultLocale)
	}
	return &Catalog{tables: tables, fallback: DefaultLocale}, nil
}

// MustLoad is Load for package initialisation and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Locales lists the loaded locale names.
func (c *Catalog) Locales() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// WithFallback returns a catalog that serves unknown locales from locale
// instead of DefaultLocale. An unknown fallback is an error.
func (c *Catalog) WithFallback(locale string) (*Catalog, error) {
	if _, ok := c.tables[locale]; !ok {
		return nil, fmt.Errorf("unknown locale %q", locale)
	}
	return &Catalog{tables: c.tables, fallback: locale}, nil
}

// For returns a translator bound to locale, falling back to the catalog's
// fallback locale.
func (c *Catalog) For(locale string) Translator {
	if _, ok := c.tables[locale]; !ok {
		locale = c.fallback
	}
	return &lang{catalog: c, locale: locale}
}

type lang struct {
	catalog *Catalog
	locale  string
}

func (l *lang) Locale() string {
	return l.locale
}

func (l *lang) Translate(key string, args ...interface{}) string {
	value, ok := l.catalog.tables[l.locale][key]
	if !ok {
		value, ok = l.catalog.tables[l.catalog.fallback][key]
	}
	if !ok {
		value, ok = l.catalog.tables[DefaultLocale][key]
	}
	if !ok || value == "" {
		return "<" + key + ">"
	}
	return format(value, args)
}

// format fills the template's verbs and drops surplus arguments.
func format(template string, args []interface{}) string {
	verbs := strings.Count(template, "%") - 2*strings.Count(template, "%%")
	if verbs <= 0 {
		return strings.ReplaceAll(template, "%%", "%")
	}
	if len(args) > verbs {
		args = args[:verbs]
	}
	return fmt.Sprintf(template, args...)
}
