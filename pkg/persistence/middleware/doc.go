// Package middleware wraps a ports.WorkflowStore with cross-cutting behavior,
// such as encryption of definitions at rest.
package middleware
