package dsl

import "github.com/aretw0/ruleflow/pkg/domain"

// Builder manages the workflow construction.
// Nodes and edges keep the order in which they were first declared.
type Builder struct {
	wf    domain.Workflow
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new workflow builder.
func New(id string) *Builder {
	return &Builder{
		wf:    domain.Workflow{ID: id, Edges: []domain.WorkflowEdge{}},
		nodes: make(map[string]*NodeBuilder),
	}
}

// Name sets the workflow display name.
func (b *Builder) Name(name string) *Builder {
	b.wf.Name = name
	return b
}

// Describe sets the workflow description.
func (b *Builder) Describe(description string) *Builder {
	b.wf.Description = description
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.WorkflowNode{ID: id, Type: domain.NodeTypeAction},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Start adds a start node.
func (b *Builder) Start(id, label string) *NodeBuilder {
	return b.Add(id).Type(domain.NodeTypeStart).Label(label)
}

// End adds an end node.
func (b *Builder) End(id, label string) *NodeBuilder {
	return b.Add(id).Type(domain.NodeTypeEnd).Label(label)
}

// Decision adds a decision node. Use True and False to wire its branches.
func (b *Builder) Decision(id, label string) *NodeBuilder {
	return b.Add(id).Type(domain.NodeTypeDecision).Label(label)
}

// Action adds an action node.
func (b *Builder) Action(id, label string) *NodeBuilder {
	return b.Add(id).Type(domain.NodeTypeAction).Label(label)
}

// Build returns the workflow. The builder can keep being used afterwards;
// the returned value shares nothing with it.
func (b *Builder) Build() *domain.Workflow {
	wf := b.wf
	wf.Nodes = make([]domain.WorkflowNode, 0, len(b.order))
	for _, id := range b.order {
		wf.Nodes = append(wf.Nodes, b.nodes[id].node)
	}
	return wf.Clone()
}

func (b *Builder) connect(e domain.WorkflowEdge) {
	b.wf.Edges = append(b.wf.Edges, e)
}
