package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/syntax"
)

// buildLetTree assembles the tree for the source "let x = 1".
func buildLetTree() *syntax.Tree {
	source := []byte("let x = 1")

	letKw := syntax.NewBuilder().WithType("let").WithSpan(0, 3).WithNamed(false).Build()
	name := syntax.NewBuilder().WithType("identifier").WithSpan(4, 5).WithField("name").Build()
	eq := syntax.NewBuilder().WithType("=").WithSpan(6, 7).WithNamed(false).Build()
	value := syntax.NewBuilder().WithType("integer").WithSpan(8, 9).WithField("value").Build()

	decl := syntax.NewBuilder().
		WithType("let_declaration").
		WithSpan(0, 9).
		WithChildren(letKw, name, eq, value).
		Build()

	root := syntax.NewBuilder().WithType("source_file").WithSpan(0, 9).WithChildren(decl).Build()

	return &syntax.Tree{Root: root, Source: source, Language: "test"}
}

func TestSpan_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    syntax.Span
		b    syntax.Span
		want bool
	}{
		{"identical", syntax.Span{Start: 0, End: 4}, syntax.Span{Start: 0, End: 4}, true},
		{"nested", syntax.Span{Start: 0, End: 10}, syntax.Span{Start: 2, End: 5}, true},
		{"partial", syntax.Span{Start: 0, End: 5}, syntax.Span{Start: 3, End: 8}, true},
		{"adjacent", syntax.Span{Start: 0, End: 4}, syntax.Span{Start: 4, End: 8}, false},
		{"disjoint", syntax.Span{Start: 0, End: 2}, syntax.Span{Start: 5, End: 7}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	t.Parallel()

	outer := syntax.Span{Start: 2, End: 10}

	assert.True(t, outer.Contains(syntax.Span{Start: 2, End: 10}))
	assert.True(t, outer.Contains(syntax.Span{Start: 4, End: 6}))
	assert.False(t, outer.Contains(syntax.Span{Start: 0, End: 5}))
	assert.False(t, outer.Contains(syntax.Span{Start: 8, End: 12}))
}

func TestSpan_Len(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(4), syntax.Span{Start: 2, End: 6}.Len())
	assert.Equal(t, uint32(0), syntax.Span{Start: 6, End: 6}.Len())
	assert.Equal(t, uint32(0), syntax.Span{Start: 6, End: 2}.Len())
	assert.True(t, syntax.Span{Start: 3, End: 3}.Empty())
}

func TestTree_Text(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()
	decl := tree.Root.Children[0]

	assert.Equal(t, "let x = 1", tree.Text(tree.Root))
	assert.Equal(t, "x", tree.Text(decl.ChildByField("name")))
	assert.Equal(t, "1", tree.Text(decl.ChildByField("value")))
	assert.Equal(t, "", tree.Text(nil))
}

func TestNode_Text_OutOfRange(t *testing.T) {
	t.Parallel()

	outside := syntax.NewBuilder().WithType("x").WithSpan(20, 30).Build()

	assert.Equal(t, "", outside.Text([]byte("short")))
}

func TestNode_ChildByField(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()
	decl := tree.Root.Children[0]

	name := decl.ChildByField("name")
	require.NotNil(t, name)
	assert.Equal(t, "identifier", name.Type)

	assert.Nil(t, decl.ChildByField("missing"))
	assert.Nil(t, decl.ChildByField(""))
}

func TestNode_ChildOfType(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()
	decl := tree.Root.Children[0]

	eq := decl.ChildOfType("=")
	require.NotNil(t, eq)
	assert.False(t, eq.Named)

	assert.Nil(t, decl.ChildOfType("float"))
}

func TestNode_VisitPreOrder_SourceOrder(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()

	var types []string

	tree.Root.VisitPreOrder(func(visitNode *syntax.Node) {
		types = append(types, visitNode.Type)
	})

	want := []string{"source_file", "let_declaration", "let", "identifier", "=", "integer"}
	assert.Equal(t, want, types)
}

func TestNode_Find_Leaves(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()

	leaves := tree.Root.Find(func(candidate *syntax.Node) bool {
		return candidate.Leaf()
	})

	require.Len(t, leaves, 4)
	assert.Equal(t, "let", leaves[0].Type)
	assert.Equal(t, "integer", leaves[3].Type)
}

func TestNode_Count(t *testing.T) {
	t.Parallel()

	tree := buildLetTree()

	assert.Equal(t, 6, tree.Root.Count())
}

func TestNewNode_PoolRoundTrip(t *testing.T) {
	t.Parallel()

	first := syntax.NewNode("identifier", syntax.Span{Start: 0, End: 3})
	assert.Equal(t, "identifier", first.Type)
	assert.True(t, first.Named)

	first.Release()

	second := syntax.NewNode("comment", syntax.Span{Start: 5, End: 9})
	assert.Equal(t, "comment", second.Type)
	assert.Empty(t, second.Children)
}

func TestTree_Span_NilSafe(t *testing.T) {
	t.Parallel()

	var empty *syntax.Tree

	assert.Equal(t, syntax.Span{}, empty.Span())
	assert.Equal(t, "", empty.Text(nil))
}
