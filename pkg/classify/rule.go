package classify

import (
	"errors"
	"sort"
	"strings"
)

// Specificity ranks how constrained a pattern is. Higher values win when a
// node matches several rules.
type Specificity uint8

// Specificity ladder: field-qualified > child-constrained > type-only >
// token-set.
const (
	SpecToken Specificity = iota
	SpecType
	SpecChild
	SpecField
)

// Pattern validation errors.
var (
	errPatternEmpty         = errors.New("pattern has no constraints")
	errFieldTypeNeedsField  = errors.New("field_type requires field")
	errTokensNeedLeafShape  = errors.New("tokens cannot combine with field or child_type")
	errFieldAndChildOverlap = errors.New("field and child_type are mutually exclusive")
)

// Pattern describes the local tree shape a rule matches. Patterns are pure
// functions of a node, its own children, and the field name the node carries
// in its parent. They never consult siblings outside the parent or any global
// document state, so classification stays parallel across subtrees.
type Pattern struct {
	// Type requires exact node-type equality when set.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Field requires the node to carry a child under this field name. The
	// captured span is the field child's span.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// FieldType additionally constrains the field child's node type.
	FieldType string `json:"field_type,omitempty" yaml:"field_type,omitempty"`

	// ChildType requires a child of the given node type.
	ChildType string `json:"child_type,omitempty" yaml:"child_type,omitempty"`

	// Tokens requires a leaf node whose text is one of the listed literals.
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Specificity returns the pattern's rank on the specificity ladder.
func (pattern Pattern) Specificity() Specificity {
	switch {
	case pattern.Field != "":
		return SpecField
	case pattern.ChildType != "":
		return SpecChild
	case pattern.Type != "":
		return SpecType
	default:
		return SpecToken
	}
}

// Validate checks the pattern for emptiness and contradictory constraints.
func (pattern Pattern) Validate() error {
	if pattern.Type == "" && pattern.Field == "" && pattern.ChildType == "" && len(pattern.Tokens) == 0 {
		return errPatternEmpty
	}

	if pattern.FieldType != "" && pattern.Field == "" {
		return errFieldTypeNeedsField
	}

	if len(pattern.Tokens) > 0 && (pattern.Field != "" || pattern.ChildType != "") {
		return errTokensNeedLeafShape
	}

	if pattern.Field != "" && pattern.ChildType != "" {
		return errFieldAndChildOverlap
	}

	return nil
}

// key returns a canonical identity string used to detect two rules in one
// group that target the same shape.
func (pattern Pattern) key() string {
	var parts []string

	if pattern.Type != "" {
		parts = append(parts, "type="+pattern.Type)
	}

	if pattern.Field != "" {
		parts = append(parts, "field="+pattern.Field+":"+pattern.FieldType)
	}

	if pattern.ChildType != "" {
		parts = append(parts, "child="+pattern.ChildType)
	}

	if len(pattern.Tokens) > 0 {
		tokens := make([]string, len(pattern.Tokens))
		copy(tokens, pattern.Tokens)
		sort.Strings(tokens)
		parts = append(parts, "tokens="+strings.Join(tokens, "\x00"))
	}

	return strings.Join(parts, "|")
}

// Rule binds a structural pattern to a presentation category.
type Rule struct {
	// Name identifies the rule in diagnostics.
	Name string `json:"name" yaml:"name"`

	// Pattern is the shape this rule matches.
	Pattern Pattern `json:"pattern" yaml:"pattern"`

	// Category is the presentation tag assigned to the captured span.
	Category Category `json:"category" yaml:"category"`

	// Priority breaks ties between equally specific rules in one group.
	// Higher wins; zero defers to declaration order.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`

	// Override lets the rule's match defeat matches from earlier-activated
	// groups on the same span, regardless of their specificity.
	Override bool `json:"override,omitempty" yaml:"override,omitempty"`
}

// Group is a named, independently activatable bundle of rules. Group order at
// load time is the activation order.
type Group struct {
	// Name identifies the group for activation.
	Name string `json:"name" yaml:"name"`

	// Rules in declaration order; declaration order is the default priority.
	Rules []Rule `json:"rules" yaml:"rules"`
}
