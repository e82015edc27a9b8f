package ports

import (
	"context"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// WorkflowStore defines the interface for persisting workflow definitions.
type WorkflowStore interface {
	// Save persists the workflow under its ID, replacing any previous version.
	Save(ctx context.Context, wf *domain.Workflow) error

	// Load retrieves the workflow for a given ID.
	// Returns domain.ErrWorkflowNotFound if the workflow does not exist.
	Load(ctx context.Context, id string) (*domain.Workflow, error)

	// Delete removes the workflow for a given ID. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored workflows in a deterministic order.
	List(ctx context.Context) ([]string, error)
}
