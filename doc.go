/*
Package ruleflow checks workflow graphs built in a visual editor and prepares
trial payloads for business rules.

# Concept

A workflow is a directed graph of start, end, decision and action nodes. Before a
workflow may be saved or activated, ruleflow verifies that it is structurally sound:
it has a start and an end, no non-terminal node is isolated, the end is reachable
from the start, and every decision has both a "true" and a "false" branch.

A rule is a list of conditions over dotted field paths ("user.age >= 18"). ruleflow
turns those conditions into a nested sample object ({"user": {"age": 18}}) so the rule
can be exercised against an external evaluator without hand-writing JSON.

# Usage

	svc, err := ruleflow.New(
		ruleflow.WithWorkflowStore(file.New(".ruleflow/workflows")),
		ruleflow.WithRulesDir("./rules"),
		ruleflow.WithEvaluator(evaluator.New("https://rules.internal")),
	)
	if err != nil {
		log.Fatal(err)
	}

	report, err := svc.SaveWorkflow(ctx, wf)
	if errors.Is(err, domain.ErrInvalidWorkflow) {
		for _, msg := range report.Errors {
			fmt.Println(msg)
		}
	}

	trial, err := svc.TestRule(ctx, "adult-customers")

The pure building blocks live in pkg/validator and pkg/synth and can be used on their own.
*/
package ruleflow
