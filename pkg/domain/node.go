package domain

// NodeType constants define the role of a node in a workflow graph.
const (
	// NodeTypeStart marks the entry point of the workflow.
	NodeTypeStart = "start"
	// NodeTypeEnd marks a terminal node.
	NodeTypeEnd = "end"
	// NodeTypeDecision branches on a boolean outcome through "true"/"false" handles.
	NodeTypeDecision = "decision"
	// NodeTypeAction performs a side-effect (the generic kind).
	NodeTypeAction = "action"
)

// Position is the canvas coordinate of a node. It is carried for the editor only.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// WorkflowNode represents a single step in a workflow graph.
type WorkflowNode struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"` // e.g., "start", "end", "decision", "action"
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	Position *Position `json:"position,omitempty" yaml:"position,omitempty"`

	// Metadata allows for extensible key-value pairs (editor settings, action parameters).
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsTerminal reports whether the node is a start or end node.
func (n WorkflowNode) IsTerminal() bool {
	return n.Type == NodeTypeStart || n.Type == NodeTypeEnd
}

// WorkflowEdge is a directed connection between two nodes.
type WorkflowEdge struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	// SourceHandle distinguishes the branches of a decision node ("true" / "false").
	// Empty for non-decision sources.
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`

	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}
