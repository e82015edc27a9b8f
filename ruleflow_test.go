package ruleflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/pkg/adapters/memory"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvalFlow(id string) *domain.Workflow {
	return &domain.Workflow{
		ID: id,
		Nodes: []domain.WorkflowNode{
			{ID: "s", Type: domain.NodeTypeStart, Label: "Start"},
			{ID: "d", Type: domain.NodeTypeDecision, Label: "Adult?"},
			{ID: "a", Type: domain.NodeTypeAction, Label: "Approve"},
			{ID: "e", Type: domain.NodeTypeEnd, Label: "End"},
		},
		Edges: []domain.WorkflowEdge{
			{Source: "s", Target: "d"},
			{Source: "d", Target: "a", SourceHandle: domain.HandleTrue},
			{Source: "d", Target: "e", SourceHandle: domain.HandleFalse},
			{Source: "a", Target: "e"},
		},
	}
}

type fakeEvaluator struct {
	verdict *domain.Verdict
	err     error
	gotData map[string]any
	gotRule string
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, rule *domain.Rule, data map[string]any) (*domain.Verdict, error) {
	f.gotRule = rule.ID
	f.gotData = data
	return f.verdict, f.err
}

// countingLocker records which keys were locked and whether they were released.
type countingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
	err      error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestService_ValidateWorkflow(t *testing.T) {
	svc, err := ruleflow.New()
	require.NoError(t, err)
	ctx := context.Background()

	report, err := svc.ValidateWorkflow(ctx, approvalFlow("ok"))
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)

	broken := approvalFlow("broken")
	broken.Edges = broken.Edges[:2] // drop the false branch and the path to end
	report, err = svc.ValidateWorkflow(ctx, broken)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, `Decision node "Adult?" (d) is missing a false path`)
	assert.Contains(t, report.Errors, "No valid path from start to end node")
}

func TestService_ValidateWorkflow_Integrity(t *testing.T) {
	svc, err := ruleflow.New()
	require.NoError(t, err)

	wf := approvalFlow("dangling")
	wf.Edges = append(wf.Edges, domain.WorkflowEdge{Source: "a", Target: "ghost"})

	_, err = svc.ValidateWorkflow(context.Background(), wf)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.True(t, ruleflow.IsClientError(err))

	_, err = svc.ValidateWorkflow(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestService_SaveWorkflow(t *testing.T) {
	store := memory.NewStore()
	var saved []string
	svc, err := ruleflow.New(
		ruleflow.WithWorkflowStore(store),
		ruleflow.WithLifecycleHooks(domain.LifecycleHooks{
			OnWorkflowSaved: func(ctx context.Context, e *domain.WorkflowEvent) {
				saved = append(saved, e.WorkflowID)
			},
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid workflow is stored as draft", func(t *testing.T) {
		wf := approvalFlow("wf-1")
		report, err := svc.SaveWorkflow(ctx, wf)
		require.NoError(t, err)
		assert.True(t, report.Valid)

		got, err := svc.GetWorkflow(ctx, "wf-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDraft, got.Status)
		assert.False(t, got.UpdatedAt.IsZero())
		assert.Equal(t, domain.WorkflowStatus(""), wf.Status, "caller's workflow must not be mutated")
	})

	t.Run("invalid workflow is not stored", func(t *testing.T) {
		wf := approvalFlow("wf-2")
		wf.Nodes = wf.Nodes[1:] // no start
		wf.Edges = wf.Edges[1:]

		report, err := svc.SaveWorkflow(ctx, wf)
		require.ErrorIs(t, err, domain.ErrInvalidWorkflow)
		assert.False(t, report.Valid)
		assert.Equal(t, "Workflow must have a start node", report.Errors[0])

		_, err = svc.GetWorkflow(ctx, "wf-2")
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	assert.Equal(t, []string{"wf-1"}, saved)

	ids, err := svc.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wf-1"}, ids)
}

func TestService_ActivateWorkflow(t *testing.T) {
	store := memory.NewStore()
	locker := &countingLocker{}
	svc, err := ruleflow.New(ruleflow.WithWorkflowStore(store), ruleflow.WithLocker(locker))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.SaveWorkflow(ctx, approvalFlow("wf"))
	require.NoError(t, err)

	report, err := svc.ActivateWorkflow(ctx, "wf")
	require.NoError(t, err)
	assert.True(t, report.Valid)

	got, err := svc.GetWorkflow(ctx, "wf")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	assert.Equal(t, []string{"workflow:wf"}, locker.locked)
	assert.Equal(t, 1, locker.released)

	_, err = svc.ActivateWorkflow(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	assert.Equal(t, 2, locker.released, "lock is released on failure too")
}

func TestService_ActivateWorkflow_RevalidatesStoredCopy(t *testing.T) {
	store := memory.NewStore()
	svc, err := ruleflow.New(ruleflow.WithWorkflowStore(store))
	require.NoError(t, err)
	ctx := context.Background()

	// Written behind the service's back, bypassing validation.
	wf := approvalFlow("tampered")
	wf.Edges = wf.Edges[:3]
	require.NoError(t, store.Save(ctx, wf))

	report, err := svc.ActivateWorkflow(ctx, "tampered")
	require.ErrorIs(t, err, domain.ErrInvalidWorkflow)
	assert.Contains(t, report.Errors, `Node "Approve" (a) is isolated with no connections`)

	got, err := store.Load(ctx, "tampered")
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusActive, got.Status)
}

func TestService_ActivateWorkflow_LockFailure(t *testing.T) {
	lockErr := errors.New("redis down")
	svc, err := ruleflow.New(ruleflow.WithLocker(&countingLocker{err: lockErr}))
	require.NoError(t, err)

	_, err = svc.ActivateWorkflow(context.Background(), "wf")
	assert.ErrorIs(t, err, lockErr)
}

func TestService_DeleteWorkflow(t *testing.T) {
	svc, err := ruleflow.New()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.SaveWorkflow(ctx, approvalFlow("wf"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWorkflow(ctx, "wf"))
	assert.ErrorIs(t, svc.DeleteWorkflow(ctx, "wf"), domain.ErrWorkflowNotFound)
}

func TestService_TestRule(t *testing.T) {
	rules, err := memory.NewRuleSource(
		domain.Rule{
			ID: "adult",
			Conditions: []domain.Condition{
				{Field: "user.age", Operator: ">=", Value: "18"},
				{Field: "user.verified", Operator: "==", Value: "true"},
			},
			InputSchema: map[string]string{"user.age": "number", "user.verified": "bool"},
		},
		domain.Rule{
			ID:          "mistyped",
			Conditions:  []domain.Condition{{Field: "user.age", Operator: ">=", Value: "eighteen"}},
			InputSchema: map[string]string{"user.age": "number"},
		},
	)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("sends synthesized payload", func(t *testing.T) {
		eval := &fakeEvaluator{verdict: &domain.Verdict{ConditionResult: true}}
		var events []*domain.RuleEvent
		svc, err := ruleflow.New(
			ruleflow.WithRuleSource(rules),
			ruleflow.WithEvaluator(eval),
			ruleflow.WithLifecycleHooks(domain.LifecycleHooks{
				OnRuleEvaluated: func(ctx context.Context, e *domain.RuleEvent) { events = append(events, e) },
			}),
		)
		require.NoError(t, err)

		res, err := svc.TestRule(ctx, "adult")
		require.NoError(t, err)
		assert.True(t, res.Verdict.ConditionResult)
		assert.Equal(t, "adult", eval.gotRule)
		assert.Equal(t, map[string]any{"user": map[string]any{"age": 18.0, "verified": true}}, eval.gotData)

		b, err := res.Data.MarshalJSON()
		require.NoError(t, err)
		assert.Equal(t, `{"user":{"age":18,"verified":true}}`, string(b))

		require.Len(t, events, 1)
		assert.False(t, events[0].IsError)
	})

	t.Run("schema mismatch stops before evaluating", func(t *testing.T) {
		eval := &fakeEvaluator{verdict: &domain.Verdict{}}
		svc, err := ruleflow.New(ruleflow.WithRuleSource(rules), ruleflow.WithEvaluator(eval))
		require.NoError(t, err)

		_, err = svc.TestRule(ctx, "mistyped")
		require.ErrorIs(t, err, domain.ErrPayloadSchema)
		assert.Contains(t, err.Error(), "user.age")
		assert.Empty(t, eval.gotRule)
	})

	t.Run("no evaluator", func(t *testing.T) {
		svc, err := ruleflow.New(ruleflow.WithRuleSource(rules))
		require.NoError(t, err)

		_, err = svc.TestRule(ctx, "adult")
		assert.ErrorIs(t, err, domain.ErrNoEvaluator)
	})

	t.Run("unknown rule", func(t *testing.T) {
		svc, err := ruleflow.New(ruleflow.WithRuleSource(rules), ruleflow.WithEvaluator(&fakeEvaluator{}))
		require.NoError(t, err)

		_, err = svc.TestRule(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})

	t.Run("evaluator failure", func(t *testing.T) {
		boom := errors.New("boom")
		var events []*domain.RuleEvent
		svc, err := ruleflow.New(
			ruleflow.WithRuleSource(rules),
			ruleflow.WithEvaluator(&fakeEvaluator{err: boom}),
			ruleflow.WithLifecycleHooks(domain.LifecycleHooks{
				OnRuleEvaluated: func(ctx context.Context, e *domain.RuleEvent) { events = append(events, e) },
			}),
		)
		require.NoError(t, err)

		_, err = svc.TestRule(ctx, "adult")
		assert.ErrorIs(t, err, boom)
		require.Len(t, events, 1)
		assert.True(t, events[0].IsError)
	})
}

func TestService_DefaultsHaveNoRules(t *testing.T) {
	svc, err := ruleflow.New()
	require.NoError(t, err)

	rules, err := svc.ListRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = svc.GetRule(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}
