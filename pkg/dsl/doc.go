/*
Package dsl provides a fluent Go builder for workflow graphs.

It is an alternative to YAML or JSON definitions when workflows are generated
in code or written inline in tests.

Example usage:

	b := dsl.New("order-approval").Name("Order approval")

	b.Start("start", "Start").Then("check")
	b.Decision("check", "Total above 500?").
		True("review").
		False("done")
	b.Action("review", "Manual review").Then("done")
	b.End("done", "Done")

	report := validator.Validate(*b.Build())
*/
package dsl
