package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/ruleflow/pkg/domain"
)

// RuleSource adapts a Loam repository of rule documents to ports.RuleSource.
// Each document (Markdown with frontmatter, JSON or YAML) describes one rule.
type RuleSource struct {
	Repo *loam.TypedRepository[RuleMetadata]
}

// New creates a new Loam rule source.
func New(repo *loam.TypedRepository[RuleMetadata]) *RuleSource {
	return &RuleSource{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*RuleSource, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rules directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules repository: %w", err)
	}

	return New(loam.NewTypedRepository[RuleMetadata](repo)), nil
}

// GetRule retrieves a rule by its normalized ID.
func (s *RuleSource) GetRule(ctx context.Context, id string) (*domain.Rule, error) {
	// Lookups by document ID only work when the file name matches the rule ID,
	// so fall back to a scan for rules declaring their own id.
	doc, err := s.Repo.Get(ctx, id)
	if err == nil {
		return toRule(doc.ID, doc.Data, doc.Content)
	}

	rules, listErr := s.list(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrRuleNotFound, id)
}

// ListRules returns every rule in the repository ordered by ID.
func (s *RuleSource) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rules, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, *r)
	}
	return out, nil
}

func (s *RuleSource) list(ctx context.Context) ([]*domain.Rule, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	rules := make([]*domain.Rule, 0, len(docs))

	for _, doc := range docs {
		r, err := toRule(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}

		if existingPath, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("collision detected: rule ID '%s' is defined in both '%s' and '%s'", r.ID, existingPath, doc.ID)
		}
		seen[r.ID] = doc.ID
		rules = append(rules, r)
	}

	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

func toRule(docID string, meta RuleMetadata, content string) (*domain.Rule, error) {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	id := trimExtension(rawID)

	r := &domain.Rule{
		ID:          id,
		Name:        meta.Name,
		Description: meta.Description,
		Enabled:     meta.Enabled == nil || *meta.Enabled,
		Conditions:  make([]domain.Condition, 0, len(meta.Conditions)),
	}
	if r.Description == "" {
		r.Description = strings.TrimSpace(content)
	}

	for i, c := range meta.Conditions {
		if c.Field == "" {
			return nil, fmt.Errorf("rule %s: condition %d has no field", id, i)
		}
		r.Conditions = append(r.Conditions, domain.Condition{
			Field:    c.Field,
			Operator: c.Operator,
			Value:    formatValue(c.Value),
		})
	}

	for _, a := range meta.Actions {
		r.Actions = append(r.Actions, domain.Action{Type: a.Type, Params: a.Params})
	}

	if len(meta.InputSchema) > 0 {
		schema, err := normalizeInputSchema(meta.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", id, err)
		}
		r.InputSchema = schema
	}

	return r, nil
}

// formatValue renders a frontmatter scalar as the text an editor would have typed.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

func normalizeInputSchema(raw map[string]any) (map[string]string, error) {
	normalized := make(map[string]string, len(raw))
	for key, value := range raw {
		typeStr, err := formatSchemaType(value)
		if err != nil {
			return nil, fmt.Errorf("input_schema.%s: %w", key, err)
		}
		normalized[key] = typeStr
	}
	return normalized, nil
}

func formatSchemaType(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []any:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		inner, err := formatSchemaType(v[0])
		if err != nil {
			return "", err
		}
		return "[" + inner + "]", nil
	case []string:
		if len(v) != 1 {
			return "", fmt.Errorf("expected single element list for slice type")
		}
		return "[" + v[0] + "]", nil
	default:
		return "", fmt.Errorf("expected string or list, got %T", value)
	}
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
