package ruleset

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// builtinFS holds the embedded rulesets shipped with the binary, one YAML
// document per supported grammar.
//
//go:embed rulesets/*.yaml
var builtinFS embed.FS

// fallbackName is the grammar-agnostic ruleset used when no language-specific
// one exists.
const fallbackName = "generic"

// builtinCache parses each embedded document at most once.
//
//nolint:gochecknoglobals // Process-wide parse cache for embedded documents.
var builtinCache sync.Map

// Builtin returns the embedded ruleset for a language. The document is parsed
// and schema-checked on first use and cached afterwards. Unknown languages
// fail with ErrUnknownLanguage.
func Builtin(language string) (*Document, error) {
	if cached, ok := builtinCache.Load(language); ok {
		doc, valid := cached.(*Document)
		if valid {
			return doc, nil
		}
	}

	data, err := builtinFS.ReadFile("rulesets/" + language + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("embedded ruleset %s: %w", language, err)
	}

	builtinCache.Store(language, doc)

	return doc, nil
}

// BuiltinOrFallback returns the embedded ruleset for the language, or the
// generic grammar-agnostic one when none exists.
func BuiltinOrFallback(language string) (*Document, error) {
	doc, err := Builtin(language)
	if err == nil {
		return doc, nil
	}

	return Builtin(fallbackName)
}

// BuiltinLanguages lists the languages with embedded rulesets, sorted, the
// generic fallback excluded.
func BuiltinLanguages() []string {
	entries, err := builtinFS.ReadDir("rulesets")
	if err != nil {
		return nil
	}

	languages := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		if name == fallbackName {
			continue
		}

		languages = append(languages, name)
	}

	sort.Strings(languages)

	return languages
}
