package validator

import (
	"fmt"

	"github.com/aretw0/ruleflow/pkg/domain"
)

const (
	msgMissingStart = "Workflow must have a start node"
	msgMissingEnd   = "Workflow must have an end node"
	msgNoPath       = "No valid path from start to end node"
)

// Validate checks wf and returns a report listing every structural defect in check order.
// wf is never modified.
func Validate(wf domain.Workflow) domain.ValidationReport {
	report := domain.NewValidationReport()

	// 1-2. Terminal presence (first match wins when duplicated)
	start, hasStart := wf.FindFirst(domain.NodeTypeStart)
	if !hasStart {
		report.Add(domain.CheckStartNode, "", msgMissingStart)
	}
	end, hasEnd := wf.FindFirst(domain.NodeTypeEnd)
	if !hasEnd {
		report.Add(domain.CheckEndNode, "", msgMissingEnd)
	}

	// 3. Isolated nodes
	connected := make(map[string]bool, len(wf.Nodes))
	for _, e := range wf.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	for _, n := range wf.Nodes {
		if n.IsTerminal() || connected[n.ID] {
			continue
		}
		report.Add(domain.CheckIsolatedNode, n.ID,
			fmt.Sprintf("Node \"%s\" (%s) is isolated with no connections", n.Label, n.ID))
	}

	// 4. Reachability
	if hasStart && hasEnd {
		if !Reachable(wf, start.ID)[end.ID] {
			report.Add(domain.CheckReachability, "", msgNoPath)
		}
	}

	// 5. Decision branches
	for _, n := range wf.Nodes {
		if n.Type != domain.NodeTypeDecision {
			continue
		}
		hasTrue, hasFalse := branches(wf.Edges, n.ID)
		if !hasTrue {
			report.Add(domain.CheckDecisionBranch, n.ID,
				fmt.Sprintf("Decision node \"%s\" (%s) is missing a true path", n.Label, n.ID))
		}
		if !hasFalse {
			report.Add(domain.CheckDecisionBranch, n.ID,
				fmt.Sprintf("Decision node \"%s\" (%s) is missing a false path", n.Label, n.ID))
		}
	}

	return report
}

// Reachable returns the set of node ids reachable from fromID by following edges forward.
// fromID itself is always in the set. Cycles are safe.
func Reachable(wf domain.Workflow, fromID string) map[string]bool {
	adj := make(map[string][]string)
	for _, e := range wf.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	queue := []string{fromID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		for _, next := range adj[currentID] {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	return visited
}

func branches(edges []domain.WorkflowEdge, nodeID string) (hasTrue, hasFalse bool) {
	for _, e := range edges {
		if e.Source != nodeID {
			continue
		}
		switch e.SourceHandle {
		case domain.HandleTrue:
			hasTrue = true
		case domain.HandleFalse:
			hasFalse = true
		}
	}
	return hasTrue, hasFalse
}
