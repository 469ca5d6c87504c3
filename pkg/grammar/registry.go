package grammar

import (
	"sort"
	"strings"
	"sync"
	"unsafe"

	forest "github.com/alexaandru/go-sitter-forest"
	"github.com/alexaandru/go-sitter-forest/bash"
	"github.com/alexaandru/go-sitter-forest/c"
	"github.com/alexaandru/go-sitter-forest/cpp"
	"github.com/alexaandru/go-sitter-forest/css"
	golang "github.com/alexaandru/go-sitter-forest/go"
	"github.com/alexaandru/go-sitter-forest/html"
	"github.com/alexaandru/go-sitter-forest/java"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/json"
	"github.com/alexaandru/go-sitter-forest/markdown"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/ruby"
	"github.com/alexaandru/go-sitter-forest/rust"
	"github.com/alexaandru/go-sitter-forest/toml"
	"github.com/alexaandru/go-sitter-forest/typescript"
	"github.com/alexaandru/go-sitter-forest/yaml"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/spanlight/spanlight/pkg/levenshtein"
)

// languageFuncs maps language names to their tree-sitter GetLanguage functions.
// Only the languages with embedded rulesets or a plausible fallback are included.
//
//nolint:gochecknoglobals // Static grammar registry, populated at compile time.
var languageFuncs = map[string]func() unsafe.Pointer{
	"bash":       bash.GetLanguage,
	"c":          c.GetLanguage,
	"cpp":        cpp.GetLanguage,
	"css":        css.GetLanguage,
	"go":         golang.GetLanguage,
	"html":       html.GetLanguage,
	"java":       java.GetLanguage,
	"javascript": javascript.GetLanguage,
	"json":       json.GetLanguage,
	"markdown":   markdown.GetLanguage,
	"python":     python.GetLanguage,
	"ruby":       ruby.GetLanguage,
	"rust":       rust.GetLanguage,
	"toml":       toml.GetLanguage,
	"typescript": typescript.GetLanguage,
	"yaml":       yaml.GetLanguage,
}

//nolint:gochecknoglobals // Shared cache of constructed sitter languages.
var languageCache sync.Map

// GetLanguage returns the tree-sitter Language for the given name, or nil if
// not supported. Constructed languages are cached for reuse across parsers.
func GetLanguage(name string) *sitter.Language {
	if cached, ok := languageCache.Load(name); ok {
		lang, castOK := cached.(*sitter.Language)
		if castOK {
			return lang
		}
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang
}

// Supported reports whether a grammar is compiled in for the given language.
func Supported(name string) bool {
	_, ok := languageFuncs[name]

	return ok
}

// Languages returns the names of all compiled-in grammars, sorted.
func Languages() []string {
	names := make([]string, 0, len(languageFuncs))
	for name := range languageFuncs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// maxSuggestDistance caps how far a name may be from a grammar before
// Closest stops suggesting it.
const maxSuggestDistance = 2

// Closest returns the compiled-in grammar name nearest to the given name by
// edit distance, for "did you mean" hints on mistyped language flags. It
// reports false when no grammar is plausibly close.
func Closest(name string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(name))

	best := ""
	bestDist := maxSuggestDistance + 1

	for _, candidate := range Languages() {
		if dist := levenshtein.Distance(target, candidate); dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	// A suggestion that rewrites the whole input is noise, not help.
	if best == "" || bestDist >= len([]rune(target)) {
		return "", false
	}

	return best, true
}

// Upstream reports whether the grammar distribution carries name even though
// this build does not compile it in. Tells a mistyped language apart from a
// real one that is simply unavailable here.
func Upstream(name string) bool {
	if Supported(name) {
		return false
	}

	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = forest.GetLanguage(name)
	}()

	return lang != nil
}
