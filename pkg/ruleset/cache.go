package ruleset

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spanlight/spanlight/pkg/classify"
)

// Entry is one compiled table together with its activation.
type Entry struct {
	Table  *classify.Table
	Active classify.Activation
}

// TableCache compiles rulesets on demand and caches the result per language.
// All entries share one group activation list; a configuration change means a
// new cache. Safe for concurrent use.
type TableCache struct {
	groups  []string
	dir     string
	entries sync.Map // language -> *Entry
}

// NewTableCache creates a cache that activates the given feature groups on
// every table it compiles. Nil means the ruleset's full group list.
func NewTableCache(groups []string) *TableCache {
	return &TableCache{groups: groups}
}

// WithDir makes the cache prefer <dir>/<language>.yaml over the embedded
// ruleset of the same language. Languages without a file there fall back to
// the embedded set.
func (cache *TableCache) WithDir(dir string) *TableCache {
	cache.dir = dir

	return cache
}

// Table returns the compiled table and activation for a language, building
// and caching it on first use. Compilation and activation failures are
// classify.ConfigError values and are not cached: a fixed ruleset on disk
// would otherwise stay broken until restart.
func (cache *TableCache) Table(language string) (*Entry, error) {
	if cached, ok := cache.entries.Load(language); ok {
		if entry, entryOK := cached.(*Entry); entryOK {
			return entry, nil
		}
	}

	doc, err := cache.loadDocument(language)
	if err != nil {
		return nil, err
	}

	entry, err := compileEntry(doc, cache.groups)
	if err != nil {
		return nil, err
	}

	// Two goroutines may build the same entry concurrently; last store wins
	// and both results are equivalent.
	cache.entries.Store(language, entry)

	return entry, nil
}

// loadDocument resolves the ruleset document for a language: the shadow
// directory first, then the embedded set.
func (cache *TableCache) loadDocument(language string) (*Document, error) {
	if cache.dir != "" && plainName(language) {
		path := filepath.Join(cache.dir, language+".yaml")
		if _, statErr := os.Stat(path); statErr == nil {
			return Load(path)
		}
	}

	return BuiltinOrFallback(language)
}

// plainName rejects language strings that could escape the shadow directory.
func plainName(language string) bool {
	return language != "" && !strings.ContainsAny(language, "/\\.")
}

// Compile builds a table and activation for a language without caching, for
// callers carrying a per-request group selection. Nil groups activate the
// ruleset's full group list.
func Compile(language string, groups []string) (*Entry, error) {
	doc, err := BuiltinOrFallback(language)
	if err != nil {
		return nil, err
	}

	return compileEntry(doc, groups)
}

func compileEntry(doc *Document, groups []string) (*Entry, error) {
	table, err := doc.Build()
	if err != nil {
		return nil, err
	}

	if groups == nil {
		return &Entry{Table: table, Active: table.ActivateAll()}, nil
	}

	active, err := table.Activate(groups...)
	if err != nil {
		return nil, err
	}

	return &Entry{Table: table, Active: active}, nil
}
