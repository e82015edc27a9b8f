package dsl

import "github.com/aretw0/ruleflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node and its outgoing edges.
type NodeBuilder struct {
	node    domain.WorkflowNode
	builder *Builder
}

// Type sets the node kind (start, end, decision, action or a custom one).
func (n *NodeBuilder) Type(nodeType string) *NodeBuilder {
	n.node.Type = nodeType
	return n
}

// Label sets the display name used in validation messages and diagrams.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Meta adds a metadata entry to the node.
func (n *NodeBuilder) Meta(key, value string) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]string)
	}
	n.node.Metadata[key] = value
	return n
}

// At places the node on the editor canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = &domain.Position{X: x, Y: y}
	return n
}

// Then adds an unconditional edge to the target node.
func (n *NodeBuilder) Then(target string) *NodeBuilder {
	n.builder.connect(domain.WorkflowEdge{Source: n.node.ID, Target: target})
	return n
}

// True adds the "true" branch of a decision node.
func (n *NodeBuilder) True(target string) *NodeBuilder {
	n.builder.connect(domain.WorkflowEdge{Source: n.node.ID, Target: target, SourceHandle: domain.HandleTrue})
	return n
}

// False adds the "false" branch of a decision node.
func (n *NodeBuilder) False(target string) *NodeBuilder {
	n.builder.connect(domain.WorkflowEdge{Source: n.node.ID, Target: target, SourceHandle: domain.HandleFalse})
	return n
}

// Build returns the underlying domain.WorkflowNode.
func (n *NodeBuilder) Build() domain.WorkflowNode {
	return n.node
}
