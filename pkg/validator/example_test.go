package validator_test

import (
	"fmt"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/validator"
)

func ExampleValidate() {
	wf := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			{ID: "s", Type: domain.NodeTypeStart, Label: "Start"},
			{ID: "check", Type: domain.NodeTypeDecision, Label: "Amount > 100"},
			{ID: "e", Type: domain.NodeTypeEnd, Label: "End"},
		},
		Edges: []domain.WorkflowEdge{
			{Source: "s", Target: "check"},
			{Source: "check", Target: "e", SourceHandle: "true"},
		},
	}

	report := validator.Validate(wf)
	fmt.Println(report.Valid)
	for _, msg := range report.Errors {
		fmt.Println(msg)
	}
	// Output:
	// false
	// Decision node "Amount > 100" (check) is missing a false path
}
