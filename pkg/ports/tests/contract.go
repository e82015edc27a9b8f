package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/ports"
)

// RuleSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.RuleSource.
// expected must contain every rule the source holds.
func RuleSourceContractTest(t *testing.T, source ports.RuleSource, expected map[string]domain.Rule) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetRule_Success", func(t *testing.T) {
		for id, want := range expected {
			got, err := source.GetRule(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting rule %s: %v", id, err)
			}
			if got.ID != want.ID {
				t.Errorf("id mismatch: got %q, want %q", got.ID, want.ID)
			}
			if len(got.Conditions) != len(want.Conditions) {
				t.Fatalf("rule %s: got %d conditions, want %d", id, len(got.Conditions), len(want.Conditions))
			}
			for i := range want.Conditions {
				if got.Conditions[i] != want.Conditions[i] {
					t.Errorf("rule %s condition %d: got %+v, want %+v", id, i, got.Conditions[i], want.Conditions[i])
				}
			}
		}
	})

	t.Run("GetRule_NotFound", func(t *testing.T) {
		_, err := source.GetRule(ctx, "non-existent-rule")
		if !errors.Is(err, domain.ErrRuleNotFound) {
			t.Errorf("expected ErrRuleNotFound, got %v", err)
		}
	})

	t.Run("ListRules", func(t *testing.T) {
		rules, err := source.ListRules(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing rules: %v", err)
		}

		if len(rules) != len(expected) {
			t.Errorf("expected %d rules, got %d", len(expected), len(rules))
		}

		for i := 1; i < len(rules); i++ {
			if rules[i-1].ID >= rules[i].ID {
				t.Errorf("rules not ordered by id: %q before %q", rules[i-1].ID, rules[i].ID)
			}
		}

		for _, r := range rules {
			if _, ok := expected[r.ID]; !ok {
				t.Errorf("unexpected rule %s in list", r.ID)
			}
		}
	})
}
