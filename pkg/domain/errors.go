package domain

import "errors"

// ErrWorkflowNotFound is returned when a workflow ID cannot be found in the store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrRuleNotFound is returned when a rule ID cannot be found in the rule source.
var ErrRuleNotFound = errors.New("rule not found")

// ErrInvalidWorkflow is returned when a save or activation is blocked by validation errors.
var ErrInvalidWorkflow = errors.New("workflow is invalid")

// ErrIntegrity is returned when a workflow breaks referential integrity
// (duplicate node ids, edges to unknown nodes). It is a contract violation of the caller.
var ErrIntegrity = errors.New("workflow integrity violation")

// ErrNoEvaluator is returned when a trial evaluation is requested but no evaluator is configured.
var ErrNoEvaluator = errors.New("no rule evaluator configured")

// ErrPayloadSchema is returned when a synthesized payload does not match the rule's input schema.
var ErrPayloadSchema = errors.New("payload does not match rule input schema")
