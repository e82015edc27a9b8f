package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// Store implements ports.WorkflowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Workflow
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Workflow),
	}
}

// Save persists the workflow in memory.
func (s *Store) Save(ctx context.Context, wf *domain.Workflow) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := wf.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[wf.ID] = copied
	return nil
}

// Load retrieves the workflow from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.data[id]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return wf.Clone(), nil
}

// Delete removes the workflow.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored workflow IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
