package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/format"
	"github.com/spanlight/spanlight/pkg/syntax"
)

func TestRemap_IdenticalContent(t *testing.T) {
	t.Parallel()

	src := []byte("let x = 1")
	remap := format.NewRemap(src, src)

	for _, off := range []uint32{0, 3, 8, 9} {
		assert.Equal(t, off, remap.Offset(off))
	}

	span, ok := remap.Span(syntax.Span{Start: 4, End: 5})
	require.True(t, ok)
	assert.Equal(t, syntax.Span{Start: 4, End: 5}, span)
}

func TestRemap_InsertionShiftsLaterSpans(t *testing.T) {
	t.Parallel()

	// The formatter doubles the space after the keyword.
	oldSrc := []byte("let x = 1")
	newSrc := []byte("let  x = 1")
	remap := format.NewRemap(oldSrc, newSrc)

	keyword, ok := remap.Span(syntax.Span{Start: 0, End: 3})
	require.True(t, ok)
	assert.Equal(t, syntax.Span{Start: 0, End: 3}, keyword)

	variable, ok := remap.Span(syntax.Span{Start: 4, End: 5})
	require.True(t, ok)
	assert.Equal(t, syntax.Span{Start: 5, End: 6}, variable)

	number, ok := remap.Span(syntax.Span{Start: 8, End: 9})
	require.True(t, ok)
	assert.Equal(t, syntax.Span{Start: 9, End: 10}, number)
}

func TestRemap_DeletionDropsCoveredSpans(t *testing.T) {
	t.Parallel()

	oldSrc := []byte("aa bb cc")
	newSrc := []byte("aa cc")
	remap := format.NewRemap(oldSrc, newSrc)

	_, ok := remap.Span(syntax.Span{Start: 3, End: 5})
	assert.False(t, ok, "span over deleted text should be dropped")

	tail, ok := remap.Span(syntax.Span{Start: 6, End: 8})
	require.True(t, ok)
	assert.Equal(t, uint32(5), tail.End)
	assert.Equal(t, uint32(2), tail.Len())
}

func TestRemap_OffsetsPastEndClampToNewEnd(t *testing.T) {
	t.Parallel()

	remap := format.NewRemap([]byte("abcdef"), []byte("abc"))

	assert.Equal(t, uint32(3), remap.Offset(6))
	assert.Equal(t, uint32(3), remap.Offset(100))
}

func TestRemap_AnnotationsCarryCategories(t *testing.T) {
	t.Parallel()

	oldSrc := []byte("let x = 1")
	newSrc := []byte("let  x = 1")
	remap := format.NewRemap(oldSrc, newSrc)

	annotations := []classify.Annotation{
		{Span: syntax.Span{Start: 0, End: 3}, Category: classify.CategoryKeyword},
		{Span: syntax.Span{Start: 4, End: 5}, Category: classify.CategoryVariable},
		{Span: syntax.Span{Start: 8, End: 9}, Category: classify.CategoryNumber},
	}

	mapped := remap.Annotations(annotations)
	require.Len(t, mapped, 3)
	assert.Equal(t, classify.CategoryKeyword, mapped[0].Category)
	assert.Equal(t, syntax.Span{Start: 5, End: 6}, mapped[1].Span)
	assert.Equal(t, classify.CategoryNumber, mapped[2].Category)

	// Mapped spans keep their relative order and never overlap.
	for i := 1; i < len(mapped); i++ {
		assert.False(t, mapped[i].Span.Overlaps(mapped[i-1].Span))
		assert.GreaterOrEqual(t, mapped[i].Span.Start, mapped[i-1].Span.End)
	}
}
