package domain

// CheckKind identifies which structural check produced an Issue.
type CheckKind string

const (
	CheckStartNode      CheckKind = "start_node"
	CheckEndNode        CheckKind = "end_node"
	CheckIsolatedNode   CheckKind = "isolated_node"
	CheckReachability   CheckKind = "reachability"
	CheckDecisionBranch CheckKind = "decision_branch"
)

// Issue is the machine-readable form of a single validation error.
type Issue struct {
	Check   CheckKind `json:"check"`
	NodeID  string    `json:"node_id,omitempty"`
	Message string    `json:"message"`
}

// ValidationReport is the outcome of validating a Workflow.
// Errors holds the human-readable messages in check order; Issues mirrors it entry by entry.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Issues []Issue  `json:"issues"`
}

// NewValidationReport returns an empty, valid report.
func NewValidationReport() ValidationReport {
	return ValidationReport{
		Valid:  true,
		Errors: []string{},
		Issues: []Issue{},
	}
}

// Add appends an issue and marks the report invalid.
func (r *ValidationReport) Add(check CheckKind, nodeID, message string) {
	r.Errors = append(r.Errors, message)
	r.Issues = append(r.Issues, Issue{Check: check, NodeID: nodeID, Message: message})
	r.Valid = false
}
