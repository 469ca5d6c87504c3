package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/syntax"
)

func TestResolve_NarrowerSpanWins(t *testing.T) {
	t.Parallel()

	outer := classify.Group{
		Name: "base",
		Rules: []classify.Rule{
			{Name: "decl", Pattern: classify.Pattern{Type: "let_declaration"}, Category: classify.CategoryModule},
		},
	}
	inner := classify.Group{
		Name: "extended",
		Rules: []classify.Rule{
			{Name: "ident", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
		},
	}

	table, err := classify.Load(outer, inner)
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	require.Len(t, result.Resolved, 1)
	assert.Equal(t, classify.CategoryVariable, result.Resolved[0].Category)
	assert.Equal(t, syntax.Span{Start: 4, End: 5}, result.Resolved[0].Span)
	assert.Len(t, result.Candidates, 2, "raw candidates keep the losing claim")
}

func TestResolve_EqualSpanTieGoesToLatestGroup(t *testing.T) {
	t.Parallel()

	first := classify.Group{
		Name: "base",
		Rules: []classify.Rule{
			{Name: "as-variable", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
		},
	}
	second := classify.Group{
		Name: "extended",
		Rules: []classify.Rule{
			{Name: "as-property", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryProperty},
		},
	}

	table, err := classify.Load(first, second)
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	require.Len(t, result.Resolved, 1)
	assert.Equal(t, classify.CategoryProperty, result.Resolved[0].Category)
}

func TestResolve_EarlierOverrideHoldsAgainstLaterPlainRule(t *testing.T) {
	t.Parallel()

	first := classify.Group{
		Name: "base",
		Rules: []classify.Rule{
			{Name: "pinned", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryConstant, Override: true},
		},
	}
	second := classify.Group{
		Name: "extended",
		Rules: []classify.Rule{
			{Name: "plain", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
		},
	}

	table, err := classify.Load(first, second)
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	require.Len(t, result.Resolved, 1)
	assert.Equal(t, classify.CategoryConstant, result.Resolved[0].Category)
}

func TestResolve_LaterOverrideBeatsMoreSpecificEarlierMatch(t *testing.T) {
	t.Parallel()

	first := classify.Group{
		Name: "base",
		Rules: []classify.Rule{
			{Name: "name-field", Pattern: classify.Pattern{Type: "let_declaration", Field: "name"}, Category: classify.CategoryFunction},
		},
	}
	second := classify.Group{
		Name: "extended",
		Rules: []classify.Rule{
			{Name: "ident", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable, Override: true},
		},
	}

	table, err := classify.Load(first, second)
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())

	require.Len(t, result.Resolved, 1)
	assert.Equal(t, classify.CategoryVariable, result.Resolved[0].Category)
}

func TestResolve_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, classify.Resolve(nil))
	assert.Empty(t, classify.Resolve([]classify.Candidate{}))
}

func TestResolve_DisjointSpansAllSurviveSorted(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(letRules())
	require.NoError(t, err)

	result := classify.Classify(letTree(), table, table.ActivateAll())
	resolved := classify.Resolve(result.Candidates)

	require.Len(t, resolved, 4)

	for i := 1; i < len(resolved); i++ {
		assert.Less(t, resolved[i-1].Span.Start, resolved[i].Span.Start)
	}
}
