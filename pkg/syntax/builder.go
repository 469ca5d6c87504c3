package syntax

// NodeBuilder provides a fluent interface for constructing Node values,
// used by the grammar bridge and by tests that assemble trees by hand.
type NodeBuilder struct {
	node *Node
}

// NewBuilder creates a new NodeBuilder with a node from the pool.
func NewBuilder() *NodeBuilder {
	poolNode, ok := nodePool.Get().(*Node)
	if !ok {
		poolNode = &Node{}
	}

	poolNode.Named = true

	return &NodeBuilder{node: poolNode}
}

// WithType sets the grammar node type.
func (builder *NodeBuilder) WithType(nodeType string) *NodeBuilder {
	builder.node.Type = nodeType

	return builder
}

// WithSpan sets the byte range.
func (builder *NodeBuilder) WithSpan(start, end uint32) *NodeBuilder {
	builder.node.Span = Span{Start: start, End: end}

	return builder
}

// WithField sets the field name under which the node appears in its parent.
func (builder *NodeBuilder) WithField(field string) *NodeBuilder {
	builder.node.Field = field

	return builder
}

// WithNamed marks the node as named or anonymous.
func (builder *NodeBuilder) WithNamed(named bool) *NodeBuilder {
	builder.node.Named = named

	return builder
}

// WithChildren sets the child list.
func (builder *NodeBuilder) WithChildren(children ...*Node) *NodeBuilder {
	builder.node.Children = children

	return builder
}

// Build returns the constructed node.
func (builder *NodeBuilder) Build() *Node {
	if builder.node.Children == nil {
		builder.node.Children = make([]*Node, 0, initialChildCap)
	}

	return builder.node
}
