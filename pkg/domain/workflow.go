package domain

import "time"

// WorkflowStatus is the lifecycle stage of a stored workflow.
type WorkflowStatus string

const (
	StatusDraft  WorkflowStatus = "draft"
	StatusActive WorkflowStatus = "active"
)

// Workflow is a graph definition as produced by the editor.
// Edge order is preserved so that validation output is reproducible.
type Workflow struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Status      WorkflowStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Nodes       []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges       []WorkflowEdge `json:"edges" yaml:"edges"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// FindFirst returns the first node of the given type in list order.
func (w *Workflow) FindFirst(nodeType string) (WorkflowNode, bool) {
	for _, n := range w.Nodes {
		if n.Type == nodeType {
			return n, true
		}
	}
	return WorkflowNode{}, false
}

// Clone returns a copy that shares no slices or maps with w.
func (w *Workflow) Clone() *Workflow {
	c := *w
	c.Nodes = make([]WorkflowNode, len(w.Nodes))
	for i, n := range w.Nodes {
		if n.Position != nil {
			p := *n.Position
			n.Position = &p
		}
		if n.Metadata != nil {
			m := make(map[string]string, len(n.Metadata))
			for k, v := range n.Metadata {
				m[k] = v
			}
			n.Metadata = m
		}
		c.Nodes[i] = n
	}
	c.Edges = append([]WorkflowEdge(nil), w.Edges...)
	return &c
}
