package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventWorkflowValidated EventType = "workflow_validated"
	EventWorkflowSaved     EventType = "workflow_saved"
	EventWorkflowActivated EventType = "workflow_activated"
	EventRuleEvaluated     EventType = "rule_evaluated"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// WorkflowEvent is emitted after a workflow is validated, saved or activated.
type WorkflowEvent struct {
	EventBase
	WorkflowID string           `json:"workflow_id"`
	Report     ValidationReport `json:"report"`
}

// RuleEvent is emitted after a trial evaluation.
type RuleEvent struct {
	EventBase
	RuleID  string   `json:"rule_id"`
	Verdict *Verdict `json:"verdict,omitempty"`
	IsError bool     `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for service observability.
type LifecycleHooks struct {
	OnWorkflowValidated func(context.Context, *WorkflowEvent)
	OnWorkflowSaved     func(context.Context, *WorkflowEvent)
	OnWorkflowActivated func(context.Context, *WorkflowEvent)
	OnRuleEvaluated     func(context.Context, *RuleEvent)
}
