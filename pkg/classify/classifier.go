package classify

import (
	"github.com/spanlight/spanlight/pkg/syntax"
)

// Candidate is an annotation with rule provenance, produced by Classify and
// consumed by Resolve. Consumers rendering layered output (bracket matching
// on top of token coloring) may read the full candidate sequence instead of
// the resolved one.
type Candidate struct {
	Annotation

	// Rule is the rule that produced the match.
	Rule *Rule `json:"rule,omitempty"`

	// Group is the feature group the rule belongs to.
	Group string `json:"group"`

	groupIndex  int
	ruleIndex   int
	specificity Specificity
	override    bool
}

// Result is the outcome of one classification pass.
type Result struct {
	// Candidates holds every winning (node, group) match in traversal order.
	Candidates []Candidate `json:"candidates,omitempty"`

	// Resolved is the non-overlapping annotation sequence sorted by span
	// start.
	Resolved []Annotation `json:"resolved"`
}

// Classify walks the tree depth-first and evaluates every node against the
// active groups' rules, using the table's node-type indexes so per-node work
// stays bounded by the candidate fan-out. Children are always visited whether
// or not the parent matched; inner tokens classify independently. Within one
// node and group at most one rule wins, per the specificity and declaration
// tie-break. The pass is pure and lock-free: trees classify concurrently
// with no coordination.
func Classify(tree *syntax.Tree, table *Table, active Activation) Result {
	if tree == nil || tree.Root == nil || table == nil {
		return Result{Resolved: []Annotation{}}
	}

	var candidates []Candidate

	tree.Root.VisitPreOrder(func(visitNode *syntax.Node) {
		candidates = classifyNode(visitNode, tree.Source, table, active, candidates)
	})

	return Result{
		Candidates: candidates,
		Resolved:   Resolve(candidates),
	}
}

// classifyNode appends the best match per active group for one node.
func classifyNode(
	node *syntax.Node,
	source []byte,
	table *Table,
	active Activation,
	candidates []Candidate,
) []Candidate {
	for groupIdx := range table.groups {
		group := &table.groups[groupIdx]
		if !active.Has(group.name) {
			continue
		}

		best, bestIdx, bestResult := bestGroupMatch(group, node, source)
		if best == nil {
			continue
		}

		candidates = append(candidates, Candidate{
			Annotation: Annotation{
				Span:     bestResult.Span,
				Category: best.Category,
			},
			Rule:        best,
			Group:       group.name,
			groupIndex:  groupIdx,
			ruleIndex:   bestIdx,
			specificity: best.Pattern.Specificity(),
			override:    best.Override,
		})
	}

	return candidates
}

// bestGroupMatch evaluates the group's indexed candidate rules against the
// node and keeps the winner: higher specificity, then higher priority, then
// later declaration.
func bestGroupMatch(group *compiledGroup, node *syntax.Node, source []byte) (*Rule, int, MatchResult) {
	var (
		best       *Rule
		bestIdx    int
		bestResult MatchResult
	)

	consider := func(ruleIdx int) {
		rule := group.rules[ruleIdx]

		result := Match(rule, node, source)
		if !result.Matched || result.Span.Empty() {
			return
		}

		if best == nil || outranks(rule, ruleIdx, best, bestIdx) {
			best, bestIdx, bestResult = rule, ruleIdx, result
		}
	}

	for _, ruleIdx := range group.byType[node.Type] {
		consider(ruleIdx)
	}

	if node.Leaf() {
		for _, ruleIdx := range group.byToken[node.Text(source)] {
			consider(ruleIdx)
		}
	}

	return best, bestIdx, bestResult
}

// outranks reports whether the challenger beats the incumbent within one
// group.
func outranks(challenger *Rule, challengerIdx int, incumbent *Rule, incumbentIdx int) bool {
	challengerSpec := challenger.Pattern.Specificity()
	incumbentSpec := incumbent.Pattern.Specificity()

	if challengerSpec != incumbentSpec {
		return challengerSpec > incumbentSpec
	}

	if challenger.Priority != incumbent.Priority {
		return challenger.Priority > incumbent.Priority
	}

	return challengerIdx > incumbentIdx
}
