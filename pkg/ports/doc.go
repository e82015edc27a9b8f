/*
Package ports defines the driven ports (interfaces) for ruleflow.

These interfaces decouple the service from external implementations, allowing
validation and synthesis to work with various storage backends, rule
repositories and evaluation endpoints.

# Key Interfaces

  - WorkflowStore: Responsible for persisting and loading workflow definitions.
  - RuleSource: Responsible for loading Rule definitions (e.g., from Loam or Memory).
  - RuleEvaluator: The external service that evaluates a rule against a payload.
  - DistributedLocker: Provides distributed locking for concurrent workflow activation.
*/
package ports
