// Package syntax provides the immutable concrete-syntax-tree snapshot consumed
// by the classification engine, together with span arithmetic and traversal.
package syntax

import (
	"sync"
)

// Span is a half-open byte range [Start, End) within a source document.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (span Span) Len() uint32 {
	if span.End < span.Start {
		return 0
	}

	return span.End - span.Start
}

// Empty reports whether the span covers no bytes.
func (span Span) Empty() bool {
	return span.End <= span.Start
}

// Contains reports whether other lies entirely within the span.
func (span Span) Contains(other Span) bool {
	return other.Start >= span.Start && other.End <= span.End
}

// Overlaps reports whether the two spans share at least one byte.
func (span Span) Overlaps(other Span) bool {
	return span.Start < other.End && other.Start < span.End
}

// Node is a single node of the snapshot tree.
//
// Fields:
//
//	Type: grammar node type (e.g., "identifier", "binary_expression").
//	Span: byte range of the node within the source document.
//	Field: name under which the node appears in its parent ("" if positional).
//	Named: whether the grammar marks the node as named (false for anonymous tokens).
//	Children: child nodes in source order.
//
// Nodes are built once per parse and never mutated afterwards; consumers hold
// only non-owning references for the duration of a classification pass.
type Node struct {
	Type     string  `json:"type"`
	Field    string  `json:"field,omitempty"`
	Span     Span    `json:"span"`
	Named    bool    `json:"named,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Tree couples a snapshot root with the source text it was parsed from.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Text returns the source text covered by the given node, or "" when the
// node's span falls outside the tree's source.
func (tree *Tree) Text(targetNode *Node) string {
	if tree == nil || targetNode == nil {
		return ""
	}

	return targetNode.Text(tree.Source)
}

// Span returns the byte range covered by the whole tree.
func (tree *Tree) Span() Span {
	if tree == nil || tree.Root == nil {
		return Span{}
	}

	return tree.Root.Span
}

// nodePool is a [sync.Pool] for Node structs to reduce allocation overhead
// during snapshot construction.
//
//nolint:gochecknoglobals // Shared pool for node allocation performance.
var nodePool = sync.Pool{
	New: func() any {
		return &Node{}
	},
}

// Allocation constants.
const (
	initialChildCap = 4
	defaultStackCap = 64
	stackCapGrowth  = 32
)

// NewNode creates a node from the pool with the given type and span.
func NewNode(nodeType string, span Span) *Node {
	poolNode, ok := nodePool.Get().(*Node)
	if !ok {
		poolNode = &Node{}
	}

	poolNode.Type = nodeType
	poolNode.Field = ""
	poolNode.Span = span
	poolNode.Named = true
	poolNode.Children = nil

	return poolNode
}

// Release returns a node to the pool for reuse. The caller must not touch the
// node afterwards; children are not released.
func (targetNode *Node) Release() {
	targetNode.Type = ""
	targetNode.Field = ""
	targetNode.Span = Span{}
	targetNode.Named = false
	targetNode.Children = nil
	nodePool.Put(targetNode)
}

// Text returns the slice of source covered by the node's span, or "" when the
// span falls outside the source.
func (targetNode *Node) Text(source []byte) string {
	if targetNode == nil {
		return ""
	}

	start, end := int(targetNode.Span.Start), int(targetNode.Span.End)
	if start < 0 || end > len(source) || start >= end {
		return ""
	}

	return string(source[start:end])
}

// Leaf reports whether the node has no children.
func (targetNode *Node) Leaf() bool {
	return len(targetNode.Children) == 0
}

// AddChild appends a child node.
func (targetNode *Node) AddChild(child *Node) {
	if targetNode.Children == nil {
		targetNode.Children = make([]*Node, 0, initialChildCap)
	}

	targetNode.Children = append(targetNode.Children, child)
}

// ChildByField returns the first child carrying the given field name, or nil.
func (targetNode *Node) ChildByField(field string) *Node {
	if targetNode == nil || field == "" {
		return nil
	}

	for _, child := range targetNode.Children {
		if child.Field == field {
			return child
		}
	}

	return nil
}

// ChildOfType returns the first child with the given node type, or nil.
func (targetNode *Node) ChildOfType(nodeType string) *Node {
	if targetNode == nil {
		return nil
	}

	for _, child := range targetNode.Children {
		if child.Type == nodeType {
			return child
		}
	}

	return nil
}

// VisitPreOrder visits all nodes in pre-order (root, then children
// left-to-right) using an explicit stack.
func (targetNode *Node) VisitPreOrder(fn func(*Node)) {
	if targetNode == nil {
		return
	}

	stack := make([]*Node, 0, defaultStackCap)
	stack = append(stack, targetNode)

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if curr == nil {
			continue
		}

		fn(curr)

		stack = pushChildrenReversed(stack, curr.Children)
	}
}

// Find returns all nodes in the subtree (including the root) for which
// predicate(node) is true, in pre-order.
func (targetNode *Node) Find(predicate func(*Node) bool) []*Node {
	if targetNode == nil {
		return nil
	}

	var found []*Node

	targetNode.VisitPreOrder(func(visitNode *Node) {
		if predicate(visitNode) {
			found = append(found, visitNode)
		}
	})

	return found
}

// Count returns the number of nodes in the subtree, including the root.
func (targetNode *Node) Count() int {
	total := 0

	targetNode.VisitPreOrder(func(*Node) {
		total++
	})

	return total
}

// pushChildrenReversed pushes children right-to-left so they pop in source order.
func pushChildrenReversed(stack, children []*Node) []*Node {
	if len(children) == 0 {
		return stack
	}

	if cap(stack) < len(stack)+len(children) {
		grown := make([]*Node, len(stack), len(stack)+len(children)+stackCapGrowth)
		copy(grown, stack)
		stack = grown
	}

	for idx := len(children) - 1; idx >= 0; idx-- {
		stack = append(stack, children[idx])
	}

	return stack
}
