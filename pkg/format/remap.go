package format

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/spanlight/spanlight/pkg/classify"
	"github.com/spanlight/spanlight/pkg/safeconv"
	"github.com/spanlight/spanlight/pkg/syntax"
)

// Remap translates byte offsets from a document to its formatted form, so
// annotations computed before formatting can be carried over until the next
// parse. Offsets inside deleted text collapse to the deletion point.
type Remap struct {
	segments []segment
	oldLen   uint32
	newLen   uint32
}

// segment covers [oldStart, oldEnd) of the original text. Deleted segments
// keep oldEnd > oldStart but occupy no new text.
type segment struct {
	oldStart uint32
	oldEnd   uint32
	newStart uint32
	deleted  bool
}

// NewRemap diffs oldSrc against newSrc and builds the offset translation.
func NewRemap(oldSrc, newSrc []byte) *Remap {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(string(oldSrc), string(newSrc), false)
	diffs = dmp.DiffCleanupMerge(dmp.DiffCleanupSemanticLossless(diffs))

	remap := &Remap{segments: make([]segment, 0, len(diffs))}

	var oldPos, newPos uint32

	for _, edit := range diffs {
		size := safeconv.MustIntToUint32(len(edit.Text))
		if size == 0 {
			continue
		}

		switch edit.Type {
		case diffmatchpatch.DiffEqual:
			remap.segments = append(remap.segments, segment{
				oldStart: oldPos, oldEnd: oldPos + size, newStart: newPos,
			})
			oldPos += size
			newPos += size
		case diffmatchpatch.DiffDelete:
			remap.segments = append(remap.segments, segment{
				oldStart: oldPos, oldEnd: oldPos + size, newStart: newPos, deleted: true,
			})
			oldPos += size
		case diffmatchpatch.DiffInsert:
			newPos += size
		}
	}

	remap.oldLen = oldPos
	remap.newLen = newPos

	return remap
}

// Offset translates a single byte offset. Offsets at or past the end of the
// original text map to the end of the new text.
func (remap *Remap) Offset(off uint32) uint32 {
	if off >= remap.oldLen {
		return remap.newLen
	}

	idx := sort.Search(len(remap.segments), func(i int) bool {
		return remap.segments[i].oldEnd > off
	})

	seg := remap.segments[idx]
	if seg.deleted {
		return seg.newStart
	}

	return seg.newStart + (off - seg.oldStart)
}

// Span translates a span. It reports false when the span collapsed entirely
// into deleted text and no longer exists in the new document.
func (remap *Remap) Span(span syntax.Span) (syntax.Span, bool) {
	start := remap.Offset(span.Start)
	end := remap.Offset(span.End)

	if end <= start {
		return syntax.Span{}, false
	}

	return syntax.Span{Start: start, End: end}, true
}

// Annotations translates a resolved annotation list, dropping annotations
// whose text was removed by the formatter. Order and non-overlap survive
// because offset translation is monotonic.
func (remap *Remap) Annotations(annotations []classify.Annotation) []classify.Annotation {
	out := make([]classify.Annotation, 0, len(annotations))

	for _, annotation := range annotations {
		mapped, ok := remap.Span(annotation.Span)
		if !ok {
			continue
		}

		out = append(out, classify.Annotation{Span: mapped, Category: annotation.Category})
	}

	return out
}
