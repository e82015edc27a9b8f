package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// RuleSource implements ports.RuleSource using an in-memory map.
type RuleSource struct {
	rules map[string]domain.Rule
	mu    sync.RWMutex
}

// NewRuleSource creates a RuleSource seeded with the given rules.
func NewRuleSource(rules ...domain.Rule) (*RuleSource, error) {
	src := &RuleSource{rules: make(map[string]domain.Rule, len(rules))}
	for _, r := range rules {
		if err := src.Put(r); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// Put adds or replaces a rule.
func (s *RuleSource) Put(r domain.Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule missing ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = *r.Clone()
	return nil
}

// GetRule retrieves a rule by ID.
func (s *RuleSource) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
	}
	return r.Clone(), nil
}

// ListRules returns all rules ordered by ID.
func (s *RuleSource) ListRules(ctx context.Context) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]domain.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, *r.Clone())
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}
