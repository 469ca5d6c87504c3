package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/render"
	"github.com/spanlight/spanlight/pkg/syntax"
)

func letAnnotations() []classify.Annotation {
	return []classify.Annotation{
		{Span: syntax.Span{Start: 0, End: 3}, Category: classify.CategoryKeyword},
		{Span: syntax.Span{Start: 4, End: 5}, Category: classify.CategoryVariable},
		{Span: syntax.Span{Start: 6, End: 7}, Category: classify.CategoryOperator},
		{Span: syntax.Span{Start: 8, End: 9}, Category: classify.CategoryNumber},
	}
}

func TestTerminal_TextSurvivesStyling(t *testing.T) {
	// Forces colors off; not parallel because color.NoColor is global.
	previous := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = previous })

	source := []byte("let x = 1")

	var buf bytes.Buffer

	err := render.Terminal(&buf, source, letAnnotations(), nil)
	require.NoError(t, err)
	assert.Equal(t, string(source), buf.String(),
		"with colors disabled, output must be byte-identical to the source")
}

func TestTerminal_EmitsEscapeCodes(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false

	t.Cleanup(func() { color.NoColor = previous })

	source := []byte("let x = 1")

	var buf bytes.Buffer

	err := render.Terminal(&buf, source, letAnnotations(), render.DefaultTheme())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\x1b[", "styled output should carry ANSI sequences")
	assert.Contains(t, buf.String(), "let")
	assert.Contains(t, buf.String(), "1")
}

func TestTerminal_SkipsOutOfRangeAnnotations(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = previous })

	source := []byte("ab")
	annotations := []classify.Annotation{
		{Span: syntax.Span{Start: 0, End: 1}, Category: classify.CategoryKeyword},
		{Span: syntax.Span{Start: 5, End: 9}, Category: classify.CategoryNumber},
	}

	var buf bytes.Buffer

	err := render.Terminal(&buf, source, annotations, nil)
	require.NoError(t, err)
	assert.Equal(t, "ab", buf.String())
}

func TestPlain_PassesThrough(t *testing.T) {
	t.Parallel()

	source := []byte("no grammar here\n")

	var buf bytes.Buffer

	err := render.Plain(&buf, source)
	require.NoError(t, err)
	assert.Equal(t, string(source), buf.String())
}

func TestHTML_EscapesAndTags(t *testing.T) {
	t.Parallel()

	source := []byte(`s < "a&b"`)
	annotations := []classify.Annotation{
		{Span: syntax.Span{Start: 2, End: 3}, Category: classify.CategoryOperator},
		{Span: syntax.Span{Start: 4, End: 9}, Category: classify.CategoryString},
	}

	var buf bytes.Buffer

	err := render.HTML(&buf, source, annotations)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<pre class="spanlight">`))
	assert.Contains(t, out, `<span class="sl-operator">&lt;</span>`)
	assert.Contains(t, out, `<span class="sl-string">&#34;a&amp;b&#34;</span>`)
	assert.NotContains(t, out, `"a&b"`, "raw source must not leak unescaped")
}

func TestHTML_NoAnnotations(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.HTML(&buf, []byte("plain"), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "<span")
}

func TestStyleSheet_CoversEmittedClasses(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.StyleSheet(&buf)
	require.NoError(t, err)

	css := buf.String()
	assert.Contains(t, css, ".sl-keyword")
	assert.Contains(t, css, ".sl-string")
	assert.Contains(t, css, ".spanlight")
}

func TestDefaultTheme_StylesCoreCategories(t *testing.T) {
	t.Parallel()

	theme := render.DefaultTheme()

	for _, category := range []classify.Category{
		classify.CategoryKeyword,
		classify.CategoryString,
		classify.CategoryComment,
		classify.CategoryNumber,
	} {
		_, ok := theme.Color(category)
		assert.True(t, ok, "default theme should style %s", category)
	}

	// Identifiers stay unstyled so ordinary code does not light up.
	_, ok := theme.Color(classify.CategoryVariable)
	assert.False(t, ok)
}
