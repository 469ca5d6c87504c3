package classify

import (
	"sort"

	"github.com/spanlight/spanlight/pkg/syntax"
)

// Annotation pairs a byte span with a presentation category. Annotations are
// transient: recomputed on every classification pass, never persisted by the
// engine.
type Annotation struct {
	Span     syntax.Span `json:"span"`
	Category Category    `json:"category"`
}

// Resolve reduces overlapping candidates to a non-overlapping annotation
// sequence sorted by span start. Ranking between overlapping claims: an
// override rule from a later-activated group wins outright, then higher
// specificity, then the narrower span, then the later group, then the later
// declaration. Candidates with empty spans are dropped.
func Resolve(candidates []Candidate) []Annotation {
	if len(candidates) == 0 {
		return []Annotation{}
	}

	order := make([]int, 0, len(candidates))

	for idx := range candidates {
		if !candidates[idx].Span.Empty() {
			order = append(order, idx)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return stronger(&candidates[order[i]], &candidates[order[j]])
	})

	accepted := acceptNonOverlapping(candidates, order)

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Span.Start < accepted[j].Span.Start
	})

	return accepted
}

// stronger is the total order behind the overlap ranking. Override rules
// rank by their group position above every non-override candidate, so a
// later group's override defeats earlier matches while an earlier override
// keeps later non-override groups from clobbering it.
func stronger(a, b *Candidate) bool {
	aOverride, bOverride := overrideRank(a), overrideRank(b)
	if aOverride != bOverride {
		return aOverride > bOverride
	}

	if a.specificity != b.specificity {
		return a.specificity > b.specificity
	}

	if a.Span.Len() != b.Span.Len() {
		return a.Span.Len() < b.Span.Len()
	}

	if a.groupIndex != b.groupIndex {
		return a.groupIndex > b.groupIndex
	}

	return a.ruleIndex > b.ruleIndex
}

// overrideRank places override candidates above all others, ordered by group.
func overrideRank(candidate *Candidate) int {
	if candidate.override {
		return candidate.groupIndex
	}

	return -1
}

// acceptNonOverlapping greedily accepts candidates in strength order,
// skipping any whose span overlaps an already accepted one.
func acceptNonOverlapping(candidates []Candidate, order []int) []Annotation {
	accepted := make([]Annotation, 0, len(order))
	occupied := make([]syntax.Span, 0, len(order))

	for _, idx := range order {
		span := candidates[idx].Span
		if overlapsAny(occupied, span) {
			continue
		}

		occupied = insertSorted(occupied, span)
		accepted = append(accepted, candidates[idx].Annotation)
	}

	return accepted
}

// overlapsAny reports whether span overlaps a member of the sorted set.
func overlapsAny(occupied []syntax.Span, span syntax.Span) bool {
	idx := sort.Search(len(occupied), func(i int) bool {
		return occupied[i].End > span.Start
	})

	return idx < len(occupied) && occupied[idx].Start < span.End
}

// insertSorted inserts span keeping the set ordered by start.
func insertSorted(occupied []syntax.Span, span syntax.Span) []syntax.Span {
	idx := sort.Search(len(occupied), func(i int) bool {
		return occupied[i].Start >= span.Start
	})

	occupied = append(occupied, syntax.Span{})
	copy(occupied[idx+1:], occupied[idx:])
	occupied[idx] = span

	return occupied
}
