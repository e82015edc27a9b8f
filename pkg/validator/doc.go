// Package validator checks the structural soundness of a workflow graph.
//
// Validate runs a fixed sequence of checks and reports every defect as data:
//
//  1. a start node exists
//  2. an end node exists
//  3. no non-terminal node is isolated
//  4. the first end node is reachable from the first start node
//  5. every decision node has both a "true" and a "false" branch
//
// A malformed graph is a normal input, so Validate never fails. Referential
// integrity (edges pointing at known nodes, unique ids) is a precondition that
// callers can assert separately with CheckIntegrity.
package validator
