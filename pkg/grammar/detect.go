package grammar

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/src-d/enry/v2"
)

// bloomSize is the bit-array length for the extension bloom filter.
// 512 bits keeps false positives negligible for the registered
// extension count while fitting in a single cache line pair.
const bloomSize = 512

// detector resolves file names to grammar names. Extension lookup is the
// fast path; content classification via enry is the fallback.
type detector struct {
	byExtension map[string]string
	extBloom    [bloomSize / 64]uint64
}

//nolint:gochecknoglobals // Single shared detector over the static registry.
var sharedDetector = newDetector()

// extensionTable maps lowercase file extensions to grammar names.
// Only grammars in the registry appear here.
//
//nolint:gochecknoglobals // Static table, read-only after init.
var extensionTable = map[string]string{
	".sh":       "bash",
	".bash":     "bash",
	".c":        "c",
	".h":        "c",
	".cc":       "cpp",
	".cpp":      "cpp",
	".cxx":      "cpp",
	".hh":       "cpp",
	".hpp":      "cpp",
	".hxx":      "cpp",
	".css":      "css",
	".go":       "go",
	".htm":      "html",
	".html":     "html",
	".java":     "java",
	".js":       "javascript",
	".jsx":      "javascript",
	".mjs":      "javascript",
	".cjs":      "javascript",
	".json":     "json",
	".md":       "markdown",
	".markdown": "markdown",
	".py":       "python",
	".pyi":      "python",
	".rb":       "ruby",
	".rake":     "ruby",
	".rs":       "rust",
	".toml":     "toml",
	".ts":       "typescript",
	".tsx":      "typescript",
	".mts":      "typescript",
	".cts":      "typescript",
	".yaml":     "yaml",
	".yml":      "yaml",
}

// enryAliases maps normalized enry language names to grammar names where
// the two vocabularies differ.
//
//nolint:gochecknoglobals // Static table, read-only after init.
var enryAliases = map[string]string{
	"c++":   "cpp",
	"shell": "bash",
	"tsx":   "typescript",
}

func newDetector() *detector {
	det := &detector{byExtension: make(map[string]string, len(extensionTable))}

	for ext, lang := range extensionTable {
		det.byExtension[ext] = lang
		det.bloomAdd(ext)
	}

	return det
}

// Detect returns the grammar name for the given filename, optionally using
// content for ambiguous or extension-less files. It returns "" when no
// compiled-in grammar applies.
func Detect(filename string, content []byte) string {
	return sharedDetector.detect(filename, content)
}

// DetectByExtension resolves a grammar from the file extension alone.
func DetectByExtension(filename string) (string, bool) {
	return sharedDetector.byExt(filename)
}

// Extensions returns the file extensions mapped to a grammar, sorted. The
// result is empty for unknown grammars.
func Extensions(language string) []string {
	exts := make([]string, 0, 4)

	for ext, lang := range extensionTable {
		if lang == language {
			exts = append(exts, ext)
		}
	}

	sort.Strings(exts)

	return exts
}

func (det *detector) detect(filename string, content []byte) string {
	if lang, ok := det.byExt(filename); ok {
		return lang
	}

	name := enry.GetLanguage(filepath.Base(filename), content)
	if name == "" {
		return ""
	}

	return normalizeLanguage(name)
}

// byExt returns the grammar for the file's extension. A bloom filter
// provides a fast negative check: if the extension is definitely not
// registered, the map lookup is skipped entirely.
func (det *detector) byExt(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !det.bloomMayContain(ext) {
		return "", false
	}

	lang, exists := det.byExtension[ext]

	return lang, exists
}

func (det *detector) bloomAdd(ext string) {
	h1, h2 := bloomHashes(ext)
	det.extBloom[h1/64] |= 1 << (h1 % 64)
	det.extBloom[h2/64] |= 1 << (h2 % 64)
}

func (det *detector) bloomMayContain(ext string) bool {
	h1, h2 := bloomHashes(ext)

	return det.extBloom[h1/64]&(1<<(h1%64)) != 0 &&
		det.extBloom[h2/64]&(1<<(h2%64)) != 0
}

// bloomHashes returns two independent bit positions for a bloom filter.
// Uses FNV-1a variant with two different seeds for the two hash functions.
func bloomHashes(s string) (uint, uint) {
	const (
		fnvBasis1 uint = 14695981039346656037
		fnvBasis2 uint = 17316225907498340287
		fnvPrime  uint = 1099511628211
	)

	h1, h2 := fnvBasis1, fnvBasis2

	for i := range len(s) {
		h1 ^= uint(s[i])
		h1 *= fnvPrime
		h2 ^= uint(s[i])
		h2 *= fnvPrime
	}

	return h1 % bloomSize, h2 % bloomSize
}

// normalizeLanguage converts an enry language name to a grammar name,
// returning "" when no compiled-in grammar matches.
func normalizeLanguage(name string) string {
	lower := strings.ToLower(name)
	if alias, ok := enryAliases[lower]; ok {
		lower = alias
	}

	if !Supported(lower) {
		return ""
	}

	return lower
}
