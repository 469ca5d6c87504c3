package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/syntax"
)

// letTree builds the snapshot for "let x = 1": a declaration holding the
// keyword literal, a name field, an equals literal, and an integer value.
func letTree() *syntax.Tree {
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

	return &syntax.Tree{Root: root, Source: []byte("let x = 1"), Language: "test"}
}

func letRules() classify.Group {
	return classify.Group{
		Name: "baseline",
		Rules: []classify.Rule{
			{Name: "let-keyword", Pattern: classify.Pattern{Type: "let"}, Category: classify.CategoryKeyword},
			{Name: "integer", Pattern: classify.Pattern{Type: "integer"}, Category: classify.CategoryNumber},
			{Name: "identifier", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
			{Name: "equals", Pattern: classify.Pattern{Tokens: []string{"="}}, Category: classify.CategoryDelimiter},
		},
	}
}

func TestClassify_LetBindingEndToEnd(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	want := []classify.Annotation{
		{Span: syntax.Span{Start: 0, End: 3}, Category: classify.CategoryKeyword},
		{Span: syntax.Span{Start: 4, End: 5}, Category: classify.CategoryVariable},
		{Span: syntax.Span{Start: 6, End: 7}, Category: classify.CategoryDelimiter},
		{Span: syntax.Span{Start: 8, End: 9}, Category: classify.CategoryNumber},
	}
	assert.Equal(t, want, result.Resolved)
}

func TestClassify_ResolvedSpansStayInsideTreeAndNeverOverlap(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	tree := letTree()
	result := classify.Classify(tree, table, table.ActivateAll())

	total := tree.Span()
	for _, annotation := range result.Resolved {
		assert.True(t, total.Contains(annotation.Span))
	}

	for i := 1; i < len(result.Resolved); i++ {
		prev, curr := result.Resolved[i-1], result.Resolved[i]

		assert.False(t, prev.Span.Overlaps(curr.Span))
		assert.LessOrEqual(t, prev.Span.End, curr.Span.Start)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	tree := letTree()
	active := table.ActivateAll()

	first := classify.Classify(tree, table, active)
	second := classify.Classify(tree, table, active)

	assert.Equal(t, first, second)
}

func TestClassify_OverrideAcrossGroups(t *testing.T) {
	t.Parallel()

	groupOne := classify.Group{
		Name: "base",
		Rules: []classify.Rule{
			{Name: "plain", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
		},
	}
	groupTwo := classify.Group{
		Name: "extended",
		Rules: []classify.Rule{
			{Name: "shadow", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryConstant, Override: true},
		},
	}

	table, err := classify.Load(groupOne, groupTwo)
	require.NoError(t, err)

	tree := letTree()

	both := table.ActivateAll()
	bothResult := classify.Classify(tree, table, both)
	require.Len(t, bothResult.Resolved, 1)
	assert.Equal(t, classify.CategoryConstant, bothResult.Resolved[0].Category)

	baseOnly, err := table.Activate("base")
	require.NoError(t, err)

	baseResult := classify.Classify(tree, table, baseOnly)
	require.Len(t, baseResult.Resolved, 1)
	assert.Equal(t, classify.CategoryVariable, baseResult.Resolved[0].Category)
}

func TestClassify_FieldQualifiedBeatsTypeOnlyRegardlessOfDeclarationOrder(t *testing.T) {
	t.Parallel()

	fieldFirst := []classify.Rule{
		{Name: "name-field", Pattern: classify.Pattern{Type: "let_declaration", Field: "name"}, Category: classify.CategoryFunction},
		{Name: "whole-decl", Pattern: classify.Pattern{Type: "let_declaration"}, Category: classify.CategoryModule},
	}
	fieldLast := []classify.Rule{fieldFirst[1], fieldFirst[0]}

	for _, rules := range [][]classify.Rule{fieldFirst, fieldLast} {
		table, err := classify.Load(classify.Group{Name: "g", Rules: rules})
		require.NoError(t, err)

		result := classify.Classify(letTree(), table, table.ActivateAll())

		require.Len(t, result.Resolved, 1)
		assert.Equal(t, classify.CategoryFunction, result.Resolved[0].Category)
		assert.Equal(t, syntax.Span{Start: 4, End: 5}, result.Resolved[0].Span)
	}
}

func TestClassify_BracketTokenSet(t *testing.T) {
	t.Parallel()

	source := []byte("([{x}])")
	leaves := make([]*syntax.Node, 0, 7)

	for idx, text := range []string{"(", "[", "{", "x", "}", "]", ")"} {
		nodeType := text
		named := false

		if text == "x" {
			nodeType = "identifier"
			named = true
		}

		leaf := syntax.NewBuilder().
			WithType(nodeType).
			WithSpan(uint32(idx), uint32(idx)+1).
			WithNamed(named).
			Build()
		leaves = append(leaves, leaf)
	}

	root := syntax.NewBuilder().WithType("expr").WithSpan(0, 7).WithChildren(leaves...).Build()
	tree := &syntax.Tree{Root: root, Source: source, Language: "test"}

	table, err := classify.Load(classify.Group{
		Name: "cosmetic",
		Rules: []classify.Rule{
			{
				Name:     "brackets",
				Pattern:  classify.Pattern{Tokens: []string{"(", ")", "[", "]", "{", "}"}},
				Category: classify.CategoryBracket,
			},
		},
	})
	require.NoError(t, err)

	result := classify.Classify(tree, table, table.ActivateAll())

	require.Len(t, result.Resolved, 6)

	for _, annotation := range result.Resolved {
		assert.Equal(t, classify.CategoryBracket, annotation.Category)
		assert.NotEqual(t, uint32(3), annotation.Span.Start, "identifier leaf must not classify as bracket")
	}
}

func TestClassify_UnmatchedNodesYieldNoAnnotation(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(classify.Group{
		Name: "baseline",
		Rules: []classify.Rule{
			{Name: "comment", Pattern: classify.Pattern{Type: "comment"}, Category: classify.CategoryComment},
		},
	})
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	assert.Empty(t, result.Resolved)
	assert.Empty(t, result.Candidates)
}

func TestClassify_NilTreeAndEmptyActivation(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	assert.Empty(t, classify.Classify(nil, table, table.ActivateAll()).Resolved)

	var none classify.Activation

	assert.Empty(t, classify.Classify(letTree(), table, none).Resolved)
}

func TestClassify_CandidatesCarryProvenance(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	require.NotEmpty(t, result.Candidates)

	for _, candidate := range result.Candidates {
		assert.Equal(t, "baseline", candidate.Group)
		require.NotNil(t, candidate.Rule)
		assert.Equal(t, candidate.Category, candidate.Rule.Category)
	}
}
