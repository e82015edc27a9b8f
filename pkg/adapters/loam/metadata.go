package loam

// RuleMetadata represents the frontmatter of a rule document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type RuleMetadata struct {
	ID          string            `json:"id" mapstructure:"id"`
	Name        string            `json:"name" mapstructure:"name"`
	Description string            `json:"description" mapstructure:"description"`
	Enabled     *bool             `json:"enabled" mapstructure:"enabled"`
	Conditions  []LoaderCondition `json:"conditions" mapstructure:"conditions"`
	Actions     []LoaderAction    `json:"actions" mapstructure:"actions"`

	// InputSchema maps dotted payload paths to type names.
	// A single-element list denotes a slice type (e.g. tags: [string]).
	InputSchema map[string]any `json:"input_schema" mapstructure:"input_schema"`
}

// LoaderCondition accepts any scalar as value since YAML authors
// rarely quote numbers and booleans.
type LoaderCondition struct {
	Field    string `json:"field" mapstructure:"field"`
	Operator string `json:"operator" mapstructure:"operator"`
	Value    any    `json:"value" mapstructure:"value"`
}

type LoaderAction struct {
	Type   string         `json:"type" mapstructure:"type"`
	Params map[string]any `json:"params" mapstructure:"params"`
}
