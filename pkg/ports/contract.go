package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractWorkflow(id string) *domain.Workflow {
	return &domain.Workflow{
		ID:     id,
		Name:   "Contract " + id,
		Status: domain.StatusDraft,
		Nodes: []domain.WorkflowNode{
			{ID: "s", Type: domain.NodeTypeStart, Label: "Start"},
			{ID: "d", Type: domain.NodeTypeDecision, Label: "Check"},
			{ID: "e", Type: domain.NodeTypeEnd, Label: "End"},
		},
		Edges: []domain.WorkflowEdge{
			{Source: "s", Target: "d"},
			{Source: "d", Target: "e", SourceHandle: domain.HandleTrue},
			{Source: "d", Target: "e", SourceHandle: domain.HandleFalse},
		},
	}
}

// RunWorkflowStoreContract runs a suite of tests to verify that a WorkflowStore implementation
// adheres to the defined interface contract.
func RunWorkflowStoreContract(t *testing.T, store WorkflowStore) {
	t.Helper()
	ctx := context.Background()
	workflowID := "contract-wf-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		wf := contractWorkflow(workflowID)

		err := store.Save(ctx, wf)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, wf.Name, loaded.Name)
		assert.Equal(t, wf.Nodes, loaded.Nodes)
		assert.Equal(t, wf.Edges, loaded.Edges, "edge order must be preserved")
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		loaded.Nodes[0].Label = "mutated"

		again, err := store.Load(ctx, workflowID)
		require.NoError(t, err)
		assert.Equal(t, "Start", again.Nodes[0].Label)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, contractWorkflow(workflowID))
		require.NoError(t, err)

		err = store.Delete(ctx, workflowID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, workflowID)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound, "Load after Delete should return ErrWorkflowNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := workflowID + "-1"
		id2 := workflowID + "-2"
		require.NoError(t, store.Save(ctx, contractWorkflow(id2)))
		require.NoError(t, store.Save(ctx, contractWorkflow(id1)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.IsIncreasing(t, ids, "List must be sorted")
	})
}
