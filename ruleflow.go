package ruleflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/ruleflow/pkg/adapters/loam"
	"github.com/aretw0/ruleflow/pkg/adapters/memory"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/observability"
	"github.com/aretw0/ruleflow/pkg/ports"
	"github.com/aretw0/ruleflow/pkg/schema"
	"github.com/aretw0/ruleflow/pkg/synth"
	"github.com/aretw0/ruleflow/pkg/validator"
)

// Version is the release of the ruleflow module.
const Version = "0.4.0"

// activationLockTTL bounds how long a crashed replica can hold an activation lock.
const activationLockTTL = 30 * time.Second

// Service is the high-level entry point for the ruleflow library.
// It validates workflows before they are stored or activated and builds
// trial payloads for rules.
type Service struct {
	store     ports.WorkflowStore
	rules     ports.RuleSource
	evaluator ports.RuleEvaluator
	locker    ports.DistributedLocker
	metrics   *observability.Metrics
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	rulesDir  string
	now       func() time.Time
}

// TrialResult is the outcome of TestRule: the payload that was sent and the evaluator's answer.
type TrialResult struct {
	RuleID  string          `json:"rule_id"`
	Data    *synth.Object   `json:"data"`
	Verdict *domain.Verdict `json:"verdict"`
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithWorkflowStore sets where workflows are persisted (default: in memory).
func WithWorkflowStore(s ports.WorkflowStore) Option {
	return func(svc *Service) {
		svc.store = s
	}
}

// WithRuleSource injects a custom RuleSource.
func WithRuleSource(r ports.RuleSource) Option {
	return func(svc *Service) {
		svc.rules = r
	}
}

// WithRulesDir reads rules from a Loam repository at dir.
// It is ignored when WithRuleSource is also given.
func WithRulesDir(dir string) Option {
	return func(svc *Service) {
		svc.rulesDir = dir
	}
}

// WithEvaluator sets the external rule evaluator used by TestRule.
func WithEvaluator(e ports.RuleEvaluator) Option {
	return func(svc *Service) {
		svc.evaluator = e
	}
}

// WithLocker serializes activations of the same workflow across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(svc *Service) {
		svc.locker = l
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(svc *Service) {
		svc.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(svc *Service) {
		svc.logger = logger
	}
}

// New initializes a Service. Without options it keeps workflows in memory
// and has no rules and no evaluator.
func New(opts ...Option) (*Service, error) {
	svc := &Service{now: time.Now}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.store == nil {
		svc.store = memory.NewStore()
	}

	if svc.rules == nil {
		if svc.rulesDir != "" {
			src, err := loam.Open(svc.rulesDir)
			if err != nil {
				return nil, err
			}
			svc.rules = src
		} else {
			empty, _ := memory.NewRuleSource()
			svc.rules = empty
		}
	}

	// Ensure logger is initialized so callers never check for nil
	if svc.logger == nil {
		svc.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	svc.logger = svc.logger.With("component", "ruleflow")

	return svc, nil
}

// ValidateWorkflow checks referential integrity and then structural soundness.
// An integrity violation is returned as an error wrapping domain.ErrIntegrity;
// structural problems are reported in the ValidationReport.
func (s *Service) ValidateWorkflow(ctx context.Context, wf *domain.Workflow) (domain.ValidationReport, error) {
	if wf == nil {
		return domain.ValidationReport{}, fmt.Errorf("%w: workflow is nil", domain.ErrIntegrity)
	}
	if err := validator.CheckIntegrity(*wf); err != nil {
		s.logger.Debug("workflow integrity check failed", "workflow_id", wf.ID, "error", err)
		return domain.ValidationReport{}, err
	}

	report := validator.Validate(*wf)
	s.metrics.RecordValidation(report)
	s.logger.Debug("workflow validated", "workflow_id", wf.ID, "valid", report.Valid, "errors", len(report.Errors))

	if s.hooks.OnWorkflowValidated != nil {
		s.hooks.OnWorkflowValidated(ctx, s.workflowEvent(domain.EventWorkflowValidated, wf.ID, report))
	}

	return report, nil
}

// SaveWorkflow validates wf and persists it only when it is valid.
// An invalid workflow yields its report together with domain.ErrInvalidWorkflow.
// Workflows without a status are stored as drafts.
func (s *Service) SaveWorkflow(ctx context.Context, wf *domain.Workflow) (domain.ValidationReport, error) {
	report, err := s.ValidateWorkflow(ctx, wf)
	if err != nil {
		return report, err
	}
	if !report.Valid {
		return report, fmt.Errorf("%w: %s", domain.ErrInvalidWorkflow, wf.ID)
	}

	stored := wf.Clone()
	if stored.Status == "" {
		stored.Status = domain.StatusDraft
	}
	stored.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, stored); err != nil {
		return report, fmt.Errorf("failed to save workflow %s: %w", wf.ID, err)
	}
	s.logger.Info("workflow saved", "workflow_id", wf.ID, "status", stored.Status)

	if s.hooks.OnWorkflowSaved != nil {
		s.hooks.OnWorkflowSaved(ctx, s.workflowEvent(domain.EventWorkflowSaved, wf.ID, report))
	}

	return report, nil
}

// ActivateWorkflow re-validates a stored workflow and marks it active.
// With a locker configured, concurrent activations of the same id are serialized.
func (s *Service) ActivateWorkflow(ctx context.Context, id string) (domain.ValidationReport, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, "workflow:"+id, activationLockTTL)
		if err != nil {
			return domain.ValidationReport{}, fmt.Errorf("failed to lock workflow %s: %w", id, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release workflow lock", "workflow_id", id, "error", err)
			}
		}()
	}

	wf, err := s.store.Load(ctx, id)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	report, err := s.ValidateWorkflow(ctx, wf)
	if err != nil {
		return report, err
	}
	if !report.Valid {
		return report, fmt.Errorf("%w: %s", domain.ErrInvalidWorkflow, id)
	}

	wf.Status = domain.StatusActive
	wf.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, wf); err != nil {
		return report, fmt.Errorf("failed to save workflow %s: %w", id, err)
	}
	s.logger.Info("workflow activated", "workflow_id", id)

	if s.hooks.OnWorkflowActivated != nil {
		s.hooks.OnWorkflowActivated(ctx, s.workflowEvent(domain.EventWorkflowActivated, id, report))
	}

	return report, nil
}

// GetWorkflow returns a stored workflow or domain.ErrWorkflowNotFound.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	return s.store.Load(ctx, id)
}

// ListWorkflows returns the ids of all stored workflows in sorted order.
func (s *Service) ListWorkflows(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// DeleteWorkflow removes a stored workflow. Unknown ids yield domain.ErrWorkflowNotFound.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) error {
	if _, err := s.store.Load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}
	s.logger.Info("workflow deleted", "workflow_id", id)
	return nil
}

// SynthesizeTestData builds a nested test payload from rule conditions.
func (s *Service) SynthesizeTestData(conditions []domain.Condition) *synth.Object {
	payload := synth.Synthesize(conditions)
	s.metrics.RecordSynthesis(len(conditions))
	return payload
}

// GetRule returns a rule from the configured source.
func (s *Service) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	return s.rules.GetRule(ctx, id)
}

// ListRules returns every known rule ordered by ID.
func (s *Service) ListRules(ctx context.Context) ([]domain.Rule, error) {
	return s.rules.ListRules(ctx)
}

// TestRule synthesizes a payload from the rule's conditions and submits it
// to the external evaluator.
func (s *Service) TestRule(ctx context.Context, ruleID string) (*TrialResult, error) {
	rule, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	payload := s.SynthesizeTestData(rule.Conditions)

	if err := CheckPayload(rule, payload); err != nil {
		return nil, err
	}

	if s.evaluator == nil {
		return nil, domain.ErrNoEvaluator
	}

	start := s.now()
	verdict, err := s.evaluator.Evaluate(ctx, rule, payload.Map())
	elapsed := s.now().Sub(start)
	s.metrics.RecordEvaluation(verdict, err, elapsed)

	if s.hooks.OnRuleEvaluated != nil {
		s.hooks.OnRuleEvaluated(ctx, &domain.RuleEvent{
			EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventRuleEvaluated},
			RuleID:    ruleID,
			Verdict:   verdict,
			IsError:   err != nil,
		})
	}

	if err != nil {
		s.logger.Error("rule evaluation failed", "rule_id", ruleID, "error", err)
		return nil, fmt.Errorf("failed to evaluate rule %s: %w", ruleID, err)
	}
	s.logger.Info("rule evaluated", "rule_id", ruleID, "result", verdict.ConditionResult, "duration", elapsed)

	return &TrialResult{RuleID: ruleID, Data: payload, Verdict: verdict}, nil
}

// CheckPayload verifies payload against the rule's declared input schema, if any.
// Failures wrap domain.ErrPayloadSchema and list every mismatching field.
func CheckPayload(rule *domain.Rule, payload *synth.Object) error {
	if len(rule.InputSchema) == 0 {
		return nil
	}

	sch, err := schema.ParseTypeMap(rule.InputSchema)
	if err != nil {
		return fmt.Errorf("rule %s has an invalid input schema: %w", rule.ID, err)
	}

	if err := schema.Validate(sch, payload.Map()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPayloadSchema, err)
	}
	return nil
}

func (s *Service) workflowEvent(t domain.EventType, id string, report domain.ValidationReport) *domain.WorkflowEvent {
	return &domain.WorkflowEvent{
		EventBase:  domain.EventBase{Timestamp: s.now(), Type: t},
		WorkflowID: id,
		Report:     report,
	}
}

// IsClientError reports whether err stems from bad input rather than a failing dependency.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrIntegrity) ||
		errors.Is(err, domain.ErrInvalidWorkflow) ||
		errors.Is(err, domain.ErrPayloadSchema)
}
