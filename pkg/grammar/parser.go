// Package grammar bridges tree-sitter grammars to syntax trees. It owns
// grammar registration, language detection, parsing, and grammar source
// acquisition. Parsed trees are fully detached from the C runtime: every
// node is copied into a syntax.Node before the tree-sitter tree is closed.
package grammar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/spanlight/spanlight/pkg/syntax"
)

// Sentinel errors for parser operations.
var (
	// ErrGrammarUnavailable signals that no grammar is compiled in for the
	// requested language. Callers degrade to plain text rendering.
	ErrGrammarUnavailable = errors.New("grammar not available")

	errNoRootNode = errors.New("parse: no root node")
	errPoolType   = errors.New("parse: pool returned unexpected type")
)

// Parser parses source text for a single language into syntax trees.
// It is safe for concurrent use; tree-sitter parser instances are pooled.
type Parser struct {
	name     string
	language *sitter.Language
	pool     sync.Pool
}

// NewParser returns a parser for the given language, or
// ErrGrammarUnavailable when no grammar is compiled in.
func NewParser(name string) (*Parser, error) {
	// Grammar construction crosses into C; recover converts a broken
	// grammar into a missing one.
	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = GetLanguage(name)
	}()

	if lang == nil {
		return nil, fmt.Errorf("%w: %s", ErrGrammarUnavailable, name)
	}

	parser := &Parser{name: name, language: lang}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// Language returns the language name this parser handles.
func (parser *Parser) Language() string {
	return parser.name
}

// Parse parses content into a detached syntax tree.
func (parser *Parser) Parse(ctx context.Context, content []byte) (*syntax.Tree, error) {
	tsParser, ok := parser.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", parser.name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	converted := newConverter(content).convert(root, "")

	return &syntax.Tree{Root: converted, Source: content, Language: parser.name}, nil
}

//nolint:gochecknoglobals // Shared cache of per-language parsers.
var parserCache sync.Map

// SharedParser returns a cached parser for the language, constructing one on
// first use. Concurrent first calls may construct twice; the extra parser is
// discarded and its pool never fills.
func SharedParser(language string) (*Parser, error) {
	if cached, ok := parserCache.Load(language); ok {
		parser, castOK := cached.(*Parser)
		if castOK {
			return parser, nil
		}
	}

	parser, err := NewParser(language)
	if err != nil {
		return nil, err
	}

	parserCache.Store(language, parser)

	return parser, nil
}
