package grammar

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/spanlight/spanlight/pkg/safeconv"
	"github.com/spanlight/spanlight/pkg/syntax"
)

// maxInternLen is the maximum string length eligible for per-parse interning.
// Strings longer than this are unlikely to repeat within a single file.
const maxInternLen = 32

// internerCap is the initial capacity for the per-parse string interner.
const internerCap = 128

// converter copies a tree-sitter tree into detached syntax nodes. Node type
// and field names repeat heavily within a file, so short strings are interned
// per parse to collapse duplicates.
type converter struct {
	source   []byte
	interner map[string]string
}

func newConverter(source []byte) *converter {
	return &converter{
		source:   source,
		interner: make(map[string]string, internerCap),
	}
}

// convert copies tsNode and its subtree. All children are kept, anonymous
// tokens included: literal token matching depends on them.
func (conv *converter) convert(tsNode sitter.Node, field string) *syntax.Node {
	span := syntax.Span{
		Start: safeconv.MustUintToUint32(tsNode.StartByte()),
		End:   safeconv.MustUintToUint32(tsNode.EndByte()),
	}

	built := syntax.NewNode(conv.intern(tsNode.Type()), span)
	built.Field = field
	built.Named = tsNode.IsNamed()

	cursor := sitter.NewTreeCursor(tsNode)
	if cursor.GoToFirstChild() {
		for {
			child := cursor.CurrentNode()
			if !child.IsNull() {
				built.AddChild(conv.convert(child, conv.intern(cursor.CurrentFieldName())))
			}

			if !cursor.GoToNextSibling() {
				break
			}
		}
	}

	return built
}

func (conv *converter) intern(s string) string {
	if s == "" {
		return ""
	}

	if len(s) <= maxInternLen {
		if interned, ok := conv.interner[s]; ok {
			return interned
		}

		conv.interner[s] = s
	}

	return s
}
