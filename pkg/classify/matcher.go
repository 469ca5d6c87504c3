package classify

import (
	"github.com/spanlight/spanlight/pkg/syntax"
)

// MatchResult is the outcome of evaluating one rule against one node. The
// zero value means no match.
type MatchResult struct {
	// Matched reports whether the pattern applied.
	Matched bool

	// Span is the captured byte range. For field-qualified patterns this is
	// the field child's span, otherwise the node's own span.
	Span syntax.Span

	// FieldChild is the captured field child for field-qualified patterns.
	FieldChild *syntax.Node
}

// Match evaluates the rule's pattern against a node. Matching is purely
// structural: node type, own children, field name, and leaf text against
// source. Siblings outside the node are never consulted.
func Match(rule *Rule, node *syntax.Node, source []byte) MatchResult {
	if rule == nil || node == nil {
		return MatchResult{}
	}

	pattern := rule.Pattern

	if pattern.Type != "" && node.Type != pattern.Type {
		return MatchResult{}
	}

	if pattern.Field != "" {
		return matchField(pattern, node)
	}

	if pattern.ChildType != "" {
		if node.ChildOfType(pattern.ChildType) == nil {
			return MatchResult{}
		}

		return MatchResult{Matched: true, Span: node.Span}
	}

	if len(pattern.Tokens) > 0 {
		return matchTokens(pattern, node, source)
	}

	return MatchResult{Matched: true, Span: node.Span}
}

// matchField captures the child under the required field name.
func matchField(pattern Pattern, node *syntax.Node) MatchResult {
	fieldChild := node.ChildByField(pattern.Field)
	if fieldChild == nil {
		return MatchResult{}
	}

	if pattern.FieldType != "" && fieldChild.Type != pattern.FieldType {
		return MatchResult{}
	}

	return MatchResult{Matched: true, Span: fieldChild.Span, FieldChild: fieldChild}
}

// matchTokens accepts leaves whose text is a member of the literal set.
func matchTokens(pattern Pattern, node *syntax.Node, source []byte) MatchResult {
	if !node.Leaf() {
		return MatchResult{}
	}

	text := node.Text(source)
	if text == "" {
		return MatchResult{}
	}

	for _, token := range pattern.Tokens {
		if text == token {
			return MatchResult{Matched: true, Span: node.Span}
		}
	}

	return MatchResult{}
}
