package observability

import (
	"time"

	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ruleflow"

// Outcome labels for ruleflow_evaluations_total.
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// Metrics collects counters and histograms for validations, syntheses and evaluations.
type Metrics struct {
	validations        *prometheus.CounterVec
	validationIssues   *prometheus.CounterVec
	syntheses          prometheus.Counter
	synthesizedConds   prometheus.Counter
	evaluations        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Workflow validations by result (valid/invalid)",
		}, []string{"result"}),
		validationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Validation errors reported, by check",
		}, []string{"check"}),
		syntheses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syntheses_total",
			Help:      "Test payloads synthesized from rule conditions",
		}),
		synthesizedConds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesized_conditions_total",
			Help:      "Conditions consumed by the synthesizer",
		}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Trial rule evaluations by outcome (pass/fail/error)",
		}, []string{"outcome"}),
		evaluationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Round-trip time of trial evaluations against the external evaluator",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordValidation counts one validation and each of its issues.
func (m *Metrics) RecordValidation(report domain.ValidationReport) {
	if m == nil {
		return
	}
	result := "valid"
	if !report.Valid {
		result = "invalid"
	}
	m.validations.WithLabelValues(result).Inc()
	for _, issue := range report.Issues {
		m.validationIssues.WithLabelValues(string(issue.Check)).Inc()
	}
}

// RecordSynthesis counts one synthesized payload built from n conditions.
func (m *Metrics) RecordSynthesis(n int) {
	if m == nil {
		return
	}
	m.syntheses.Inc()
	m.synthesizedConds.Add(float64(n))
}

// RecordEvaluation records a trial evaluation. verdict is ignored when err is set.
func (m *Metrics) RecordEvaluation(verdict *domain.Verdict, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeError
	switch {
	case err != nil || verdict == nil:
	case verdict.ConditionResult:
		outcome = OutcomePass
	default:
		outcome = OutcomeFail
	}
	m.evaluations.WithLabelValues(outcome).Inc()
	m.evaluationDuration.Observe(elapsed.Seconds())
}
