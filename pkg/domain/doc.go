/*
Package domain contains the core domain models for ruleflow.

It defines the workflow graph (nodes and edges), the validation report produced
for it, and the rule model (conditions, actions and the verdict returned by an
external evaluator). This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Workflow: A node/edge graph describing an automatable process.
  - ValidationReport: The ordered list of structural defects found in a Workflow.
  - Rule: A set of dotted-path conditions plus the actions applied when they hold.
  - Verdict: The opaque pass/fail answer of an external rule evaluator.
*/
package domain
