// Package i18n resolves user-facing status and error strings from translation keys.
package i18n

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator resolves key to a localized string, using fallback when the key is unknown.
type Translator interface {
	Translate(key, fallback string, vars map[string]any) string
}

// Fallback returns the literal fallback text with interpolations applied.
type Fallback struct{}

func (Fallback) Translate(_ string, fallback string, vars map[string]any) string {
	return Interpolate(fallback, vars)
}

// CatalogTranslator serves messages registered per language from an x/text catalog.
type CatalogTranslator struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	tags     []language.Tag
	keys     map[language.Tag]map[string]struct{}
	matcher  language.Matcher
	language language.Tag
}

// NewCatalogTranslator builds an empty catalog that renders in the given language.
func NewCatalogTranslator(lang language.Tag) *CatalogTranslator {
	return &CatalogTranslator{
		builder:  catalog.NewBuilder(catalog.Fallback(lang)),
		keys:     make(map[language.Tag]map[string]struct{}),
		language: lang,
	}
}

// Register adds messages for a language. Messages may use {name} placeholders.
func (c *CatalogTranslator) Register(tag language.Tag, messages map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	known, ok := c.keys[tag]
	if !ok {
		known = make(map[string]struct{}, len(messages))
		c.keys[tag] = known
		c.tags = append(c.tags, tag)
		c.matcher = language.NewMatcher(c.tags)
	}
	for key, msg := range messages {
		// escape printf verbs so the printer returns the message verbatim
		if err := c.builder.SetString(tag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
			return fmt.Errorf("register %s/%s: %w", tag, key, err)
		}
		known[key] = struct{}{}
	}
	return nil
}

// SetLanguage switches the rendering language.
func (c *CatalogTranslator) SetLanguage(tag language.Tag) {
	c.mu.Lock()
	c.language = tag
	c.mu.Unlock()
}

func (c *CatalogTranslator) Translate(key, fallback string, vars map[string]any) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.matcher == nil || key == "" {
		return Interpolate(fallback, vars)
	}
	_, idx, confidence := c.matcher.Match(c.language)
	if confidence == language.No || idx < 0 || idx >= len(c.tags) {
		return Interpolate(fallback, vars)
	}
	tag := c.tags[idx]
	if _, ok := c.keys[tag][key]; !ok {
		return Interpolate(fallback, vars)
	}
	printer := message.NewPrinter(tag, message.Catalog(c.builder))
	return Interpolate(printer.Sprintf(key), vars)
}

// Interpolate replaces {name} placeholders with the matching values.
func Interpolate(text string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(vars[name]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
