package loam

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/ruleflow/internal/testutils"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adultRule = `---
name: Adult customers
conditions:
  - field: user.age
    operator: ">="
    value: 18
  - field: user.verified
    operator: "=="
    value: true
input_schema:
  user.age: number
  user.tags: [string]
---
Customers old enough to buy.`

const vipRule = `{
  "id": "vip",
  "enabled": false,
  "conditions": [
    {"field": "order.total", "operator": ">", "value": "500"}
  ],
  "actions": [
    {"type": "discount", "params": {"percent": 10}}
  ]
}`

func newSource(t *testing.T, files map[string]string) *RuleSource {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, dir, files)
	return New(loam.NewTypedRepository[RuleMetadata](repo))
}

func TestRuleSource_Contract(t *testing.T) {
	src := newSource(t, map[string]string{
		"adult.md": adultRule,
		"vip.json": vipRule,
	})

	tests.RuleSourceContractTest(t, src, map[string]domain.Rule{
		"adult": {
			ID: "adult",
			Conditions: []domain.Condition{
				{Field: "user.age", Operator: ">=", Value: "18"},
				{Field: "user.verified", Operator: "==", Value: "true"},
			},
		},
		"vip": {
			ID:         "vip",
			Conditions: []domain.Condition{{Field: "order.total", Operator: ">", Value: "500"}},
		},
	})
}

func TestRuleSource_MapsMetadata(t *testing.T) {
	src := newSource(t, map[string]string{
		"adult.md": adultRule,
		"vip.json": vipRule,
	})
	ctx := context.Background()

	adult, err := src.GetRule(ctx, "adult")
	require.NoError(t, err)
	assert.Equal(t, "Adult customers", adult.Name)
	assert.True(t, adult.Enabled, "rules are enabled unless stated otherwise")
	assert.Equal(t, "Customers old enough to buy.", adult.Description)
	assert.Equal(t, map[string]string{"user.age": "number", "user.tags": "[string]"}, adult.InputSchema)

	vip, err := src.GetRule(ctx, "vip")
	require.NoError(t, err)
	assert.False(t, vip.Enabled)
	require.Len(t, vip.Actions, 1)
	assert.Equal(t, "discount", vip.Actions[0].Type)
}

func TestRuleSource_ExplicitIDDiffersFromFileName(t *testing.T) {
	src := newSource(t, map[string]string{
		"legacy-name.md": `---
id: renamed
conditions:
  - field: a
    operator: "=="
    value: x
---`,
	})

	r, err := src.GetRule(context.Background(), "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", r.ID)
}

func TestRuleSource_DetectsCollisions(t *testing.T) {
	src := newSource(t, map[string]string{
		"foo.md": `---
id: foo
---`,
		"foo.json": `{"id": "foo"}`,
	})

	_, err := src.ListRules(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestRuleSource_ConditionWithoutField(t *testing.T) {
	src := newSource(t, map[string]string{
		"broken.md": `---
conditions:
  - operator: "=="
    value: 1
---`,
	})

	_, err := src.ListRules(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrRuleNotFound))
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"gold", "gold"},
		{18, "18"},
		{int64(7), "7"},
		{2.5, "2.5"},
		{float64(1e21), "1000000000000000000000"},
		{true, "true"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatValue(tc.in), "%#v", tc.in)
	}
}

func TestFormatSchemaType(t *testing.T) {
	got, err := formatSchemaType([]any{[]any{"int"}})
	require.NoError(t, err)
	assert.Equal(t, "[[int]]", got)

	_, err = formatSchemaType([]any{"a", "b"})
	assert.Error(t, err)

	_, err = formatSchemaType(42)
	assert.Error(t, err)
}
