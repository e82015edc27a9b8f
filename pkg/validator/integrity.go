package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// IntegrityError lists the referential problems found by CheckIntegrity.
type IntegrityError struct {
	Problems []string
}

func (e *IntegrityError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", domain.ErrIntegrity, e.Problems[0])
	}
	return fmt.Sprintf("%s: found %d problems:\n- %s", domain.ErrIntegrity, len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// Unwrap allows errors.Is(err, domain.ErrIntegrity).
func (e *IntegrityError) Unwrap() error {
	return domain.ErrIntegrity
}

// CheckIntegrity verifies the assumptions Validate makes about its input:
// node ids are non-empty and unique, every edge endpoint names an existing node,
// and decision nodes carry at most one "true" and one "false" edge with no other handles.
// It returns nil or an *IntegrityError.
func CheckIntegrity(wf domain.Workflow) error {
	var problems []string

	types := make(map[string]string, len(wf.Nodes))
	for i, n := range wf.Nodes {
		if n.ID == "" {
			problems = append(problems, fmt.Sprintf("node at index %d has an empty id", i))
			continue
		}
		if _, dup := types[n.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node id '%s'", n.ID))
			continue
		}
		types[n.ID] = n.Type
	}

	handles := make(map[string]bool)
	for i, e := range wf.Edges {
		srcType, srcOK := types[e.Source]
		if !srcOK {
			problems = append(problems, fmt.Sprintf("edge %d references unknown source '%s'", i, e.Source))
		}
		if _, ok := types[e.Target]; !ok {
			problems = append(problems, fmt.Sprintf("edge %d references unknown target '%s'", i, e.Target))
		}
		if !srcOK || srcType != domain.NodeTypeDecision || e.SourceHandle == "" {
			continue
		}

		if e.SourceHandle != domain.HandleTrue && e.SourceHandle != domain.HandleFalse {
			problems = append(problems, fmt.Sprintf("edge %d from decision '%s' has unknown handle '%s'", i, e.Source, e.SourceHandle))
			continue
		}
		key := e.Source + "/" + e.SourceHandle
		if handles[key] {
			problems = append(problems, fmt.Sprintf("decision '%s' has more than one '%s' edge", e.Source, e.SourceHandle))
		}
		handles[key] = true
	}

	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	return nil
}
