package ports

import (
	"context"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// RuleSource defines how the service retrieves rule definitions.
// This allows the storage layer (Loam, Memory) to be decoupled.
type RuleSource interface {
	// GetRule retrieves a rule by ID.
	// Returns domain.ErrRuleNotFound if the rule does not exist.
	GetRule(ctx context.Context, id string) (*domain.Rule, error)

	// ListRules returns all available rules ordered by ID.
	ListRules(ctx context.Context) ([]domain.Rule, error)
}

// RuleEvaluator is the external service that decides whether a rule holds for a payload.
// Implementations send data wrapped under domain.DataKey.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, rule *domain.Rule, data map[string]any) (*domain.Verdict, error)
}
