package classify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
)

func twoTierGroups() []classify.Group {
	return []classify.Group{
		{
			Name: "baseline",
			Rules: []classify.Rule{
				{Name: "comment", Pattern: classify.Pattern{Type: "comment"}, Category: classify.CategoryComment},
				{Name: "string", Pattern: classify.Pattern{Type: "string"}, Category: classify.CategoryString},
			},
		},
		{
			Name: "standard",
			Rules: []classify.Rule{
				{Name: "operator", Pattern: classify.Pattern{Tokens: []string{"+", "-"}}, Category: classify.CategoryOperator},
			},
		},
	}
}

func TestLoad_BuildsTable(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)

	require.NoError(t, err)
	assert.Equal(t, []string{"baseline", "standard"}, table.Groups())
	assert.Equal(t, 3, table.Len())
}

func TestLoad_NoGroups(t *testing.T) {
	t.Parallel()

	_, err := classify.Load()

	require.Error(t, err)
	assert.True(t, classify.IsConfigError(err))
}

func TestLoad_DuplicateGroupName(t *testing.T) {
	t.Parallel()

	groups := twoTierGroups()
	groups[1].Name = "baseline"

	_, err := classify.Load(groups...)

	require.Error(t, err)

	var configErr *classify.ConfigError

	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "baseline", configErr.Group)
	assert.Contains(t, configErr.Error(), "duplicate")
}

func TestLoad_EmptyGroupName(t *testing.T) {
	t.Parallel()

	_, err := classify.Load(classify.Group{Name: ""})

	assert.True(t, classify.IsConfigError(err))
}

func TestLoad_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := classify.Load(classify.Group{
		Name: "broken",
		Rules: []classify.Rule{
			{Name: "empty", Pattern: classify.Pattern{}, Category: classify.CategoryComment},
		},
	})

	var configErr *classify.ConfigError

	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "broken", configErr.Group)
	assert.Equal(t, "empty", configErr.Rule)
}

func TestLoad_UnknownCategory(t *testing.T) {
	t.Parallel()

	_, err := classify.Load(classify.Group{
		Name: "broken",
		Rules: []classify.Rule{
			{Name: "odd", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.Category("sparkle")},
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sparkle")
}

func TestLoad_AmbiguousPair(t *testing.T) {
	t.Parallel()

	_, err := classify.Load(classify.Group{
		Name: "conflicted",
		Rules: []classify.Rule{
			{Name: "a", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
			{Name: "b", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryConstant},
		},
	})

	var configErr *classify.ConfigError

	require.ErrorAs(t, err, &configErr)
	assert.Contains(t, configErr.Reason, "ambiguous")
}

func TestLoad_DuplicatePatternAllowedWithTieBreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []classify.Rule
	}{
		{
			"same category",
			[]classify.Rule{
				{Name: "a", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
				{Name: "b", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
			},
		},
		{
			"override set",
			[]classify.Rule{
				{Name: "a", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable},
				{Name: "b", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryConstant, Override: true},
			},
		},
		{
			"priority difference",
			[]classify.Rule{
				{Name: "a", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryVariable, Priority: 1},
				{Name: "b", Pattern: classify.Pattern{Type: "identifier"}, Category: classify.CategoryConstant},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := classify.Load(classify.Group{Name: "g", Rules: tt.rules})

			assert.NoError(t, err)
		})
	}
}

func TestActivate_UnknownGroupLeavesPriorStateUnchanged(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)
	require.NoError(t, err)

	prior, err := table.Activate("baseline")
	require.NoError(t, err)

	_, err = table.Activate("nonexistent")

	require.Error(t, err)
	assert.True(t, classify.IsConfigError(err))

	var configErr *classify.ConfigError

	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "nonexistent", configErr.Group)

	// The previously obtained activation still works as before.
	assert.True(t, prior.Has("baseline"))
	assert.False(t, prior.Has("standard"))
	assert.Equal(t, []string{"baseline"}, table.ActiveNames(prior))
}

func TestActivate_SubsetControlsRulesFor(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)
	require.NoError(t, err)

	baselineOnly, err := table.Activate("baseline")
	require.NoError(t, err)

	rules := table.RulesFor(baselineOnly)

	require.Len(t, rules, 2)
	assert.Equal(t, "comment", rules[0].Name)
	assert.Equal(t, "string", rules[1].Name)
}

func TestActivateAll_CoversEveryGroup(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)
	require.NoError(t, err)

	all := table.ActivateAll()

	assert.Equal(t, []string{"baseline", "standard"}, table.ActiveNames(all))
	assert.Len(t, table.RulesFor(all), 3)
}

func TestRulesFor_PreservesGroupDeclarationOrder(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)
	require.NoError(t, err)

	rules := table.RulesFor(table.ActivateAll())

	require.Len(t, rules, 3)
	assert.Equal(t, "comment", rules[0].Name)
	assert.Equal(t, "string", rules[1].Name)
	assert.Equal(t, "operator", rules[2].Name)
}

func TestZeroActivation_ActivatesNothing(t *testing.T) {
	t.Parallel()

	table, err := classify.Load(twoTierGroups()...)
	require.NoError(t, err)

	var none classify.Activation

	assert.Empty(t, table.RulesFor(none))
}
