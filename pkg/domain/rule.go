package domain

import "encoding/json"

// Condition is a single rule predicate over a dotted field path.
// The operator is opaque here; only the external evaluator interprets it.
type Condition struct {
	Field    string `json:"field" yaml:"field" mapstructure:"field"`
	Operator string `json:"operator" yaml:"operator" mapstructure:"operator"`
	Value    string `json:"value" yaml:"value" mapstructure:"value"`
}

// Action is applied by the evaluator when a rule's conditions hold.
type Action struct {
	Type   string         `json:"type" yaml:"type" mapstructure:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// Rule groups conditions with the actions they trigger.
type Rule struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	Conditions  []Condition `json:"conditions" yaml:"conditions"`
	Actions     []Action    `json:"actions,omitempty" yaml:"actions,omitempty"`

	// InputSchema optionally declares the expected type of payload fields,
	// keyed by dotted path (e.g. {"user.age": "number"}).
	InputSchema map[string]string `json:"input_schema,omitempty" yaml:"input_schema,omitempty"`
}

// Verdict is the response of an external rule evaluator.
// Raw keeps the evaluator's body verbatim since its format is defined by that service.
type Verdict struct {
	ConditionResult bool             `json:"conditionResult"`
	ActionsApplied  []map[string]any `json:"actionsApplied,omitempty"`
	Raw             json.RawMessage  `json:"raw,omitempty"`
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Conditions = append([]Condition(nil), r.Conditions...)
	if r.Actions != nil {
		c.Actions = make([]Action, len(r.Actions))
		for i, a := range r.Actions {
			if a.Params != nil {
				a.Params = cloneValue(a.Params).(map[string]any)
			}
			c.Actions[i] = a
		}
	}
	if r.InputSchema != nil {
		c.InputSchema = make(map[string]string, len(r.InputSchema))
		for k, v := range r.InputSchema {
			c.InputSchema[k] = v
		}
	}
	return &c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	default:
		return val
	}
}
