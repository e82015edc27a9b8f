package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/validator"
)

// GraphOverlay contains validation findings to visualize on the graph.
type GraphOverlay struct {
	// IssueNodes are nodes named by validation issues.
	IssueNodes []string
	// Unreachable are nodes that cannot be reached from the start node.
	Unreachable []string
}

// NewOverlay derives an overlay from a validation report and the workflow's reachability.
// It returns nil when there is nothing to highlight.
func NewOverlay(wf domain.Workflow, report domain.ValidationReport) *GraphOverlay {
	overlay := &GraphOverlay{}
	for _, issue := range report.Issues {
		if issue.NodeID != "" {
			overlay.IssueNodes = append(overlay.IssueNodes, issue.NodeID)
		}
	}

	if start, ok := wf.FindFirst(domain.NodeTypeStart); ok {
		reached := validator.Reachable(wf, start.ID)
		for _, n := range wf.Nodes {
			if !reached[n.ID] {
				overlay.Unreachable = append(overlay.Unreachable, n.ID)
			}
		}
	}

	if len(overlay.IssueNodes) == 0 && len(overlay.Unreachable) == 0 {
		return nil
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a workflow.
// It applies semantic styling:
// - Start: ((Circle))
// - End: (((Double circle)))
// - Decision: {Rhombus}
// - Default: [Rectangle]
// Decision edges are labelled with their branch handle.
func GenerateMermaid(wf domain.Workflow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range wf.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeEnd:
			opener, closer = "(((", ")))"
		case domain.NodeTypeDecision:
			opener, closer = "{", "}"
		}

		text := node.Label
		if text == "" {
			text = node.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(text), closer)
	}

	for _, e := range wf.Edges {
		arrow := "-->"
		label := e.Label
		if label == "" {
			label = e.SourceHandle
		}
		if label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef issue fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef unreachable fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")

		writeClass(&sb, overlay.Unreachable, "unreachable")
		// Issues last so they win over unreachable
		writeClass(&sb, overlay.IssueNodes, "issue")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
