package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/internal/config"
	"github.com/aretw0/ruleflow/internal/logging"
	"github.com/aretw0/ruleflow/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
nodes:
  - {id: s, type: start, label: Start}
  - {id: e, type: end, label: End}
edges:
  - {source: s, target: e}
`

const isolatedYAML = `
nodes:
  - {id: s, type: start, label: Start}
  - {id: e, type: end, label: End}
  - {id: n, type: action, label: Notify}
edges:
  - {source: s, target: e}
`

const danglingJSON = `{"nodes":[{"id":"s","type":"start"}],"edges":[{"source":"s","target":"ghost"}]}`

const ruleYAML = `
id: vip
conditions:
  - {field: order.total, operator: ">", value: "500"}
  - {field: customer.vip, operator: "==", value: "true"}
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"ok.yaml":       validYAML,
		"isolated.yaml": isolatedYAML,
		"dangling.json": danglingJSON,
		"vip.yaml":      ruleYAML,
		"notes.txt":     "not a workflow",
	})
	return dir
}

func newService(t *testing.T) *ruleflow.Service {
	t.Helper()
	svc, err := ruleflow.New()
	require.NoError(t, err)
	return svc
}

func TestRunValidate(t *testing.T) {
	dir := writeFixtures(t)
	ctx := context.Background()

	t.Run("Valid file", func(t *testing.T) {
		var out bytes.Buffer
		err := RunValidate(ctx, newService(t), []string{filepath.Join(dir, "ok.yaml")}, false, &out)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "ok.yaml: valid")
	})

	t.Run("Invalid files fail with ErrInvalid", func(t *testing.T) {
		var out bytes.Buffer
		paths := []string{filepath.Join(dir, "isolated.yaml"), filepath.Join(dir, "dangling.json")}

		err := RunValidate(ctx, newService(t), paths, false, &out)
		assert.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, out.String(), `Node "Notify" (n) is isolated with no connections`)
		assert.Contains(t, out.String(), "dangling.json: error")
	})

	t.Run("JSON output", func(t *testing.T) {
		var out bytes.Buffer
		paths := []string{filepath.Join(dir, "ok.yaml"), filepath.Join(dir, "isolated.yaml"), filepath.Join(dir, "missing.yaml")}

		err := RunValidate(ctx, newService(t), paths, true, &out)
		assert.ErrorIs(t, err, ErrInvalid)

		var got []struct {
			File   string   `json:"file"`
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
			Error  string   `json:"error"`
		}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 3)
		assert.True(t, got[0].Valid)
		assert.Equal(t, []string{`Node "Notify" (n) is isolated with no connections`}, got[1].Errors)
		assert.False(t, got[2].Valid)
		assert.NotEmpty(t, got[2].Error)
	})
}

func TestRunGraph(t *testing.T) {
	dir := writeFixtures(t)

	var out bytes.Buffer
	require.NoError(t, RunGraph(filepath.Join(dir, "isolated.yaml"), &out))
	assert.Contains(t, out.String(), "graph TD")
	assert.Contains(t, out.String(), "class n issue")

	out.Reset()
	require.NoError(t, RunGraph(filepath.Join(dir, "dangling.json"), &out))
	assert.NotContains(t, out.String(), "classDef")

	assert.Error(t, RunGraph(filepath.Join(dir, "missing.yaml"), &out))
}

func TestRunSynth(t *testing.T) {
	dir := writeFixtures(t)
	ctx := context.Background()
	rulePath := filepath.Join(dir, "vip.yaml")

	t.Run("Payload only", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunSynth(ctx, SynthOptions{File: rulePath}, logging.NewNop(), &out))
		assert.JSONEq(t, `{"order":{"total":500},"customer":{"vip":true}}`, out.String())
	})

	t.Run("With evaluator", func(t *testing.T) {
		var body map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rules/vip/test", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = w.Write([]byte(`{"conditionResult":true,"actionsApplied":[{"type":"tag"}]}`))
		}))
		defer srv.Close()

		var out bytes.Buffer
		opts := SynthOptions{File: rulePath, Evaluator: config.EvaluatorConfig{URL: srv.URL}}
		require.NoError(t, RunSynth(ctx, opts, logging.NewNop(), &out))
		assert.Contains(t, out.String(), "**Result:** pass")
		assert.Equal(t, map[string]any{"total": float64(500)}, body["data"].(map[string]any)["order"])

		out.Reset()
		opts.JSON = true
		require.NoError(t, RunSynth(ctx, opts, logging.NewNop(), &out))
		var res map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		assert.Equal(t, "vip", res["rule_id"])
	})

	t.Run("Argument errors", func(t *testing.T) {
		tests := []struct {
			name string
			opts SynthOptions
		}{
			{"Nothing given", SynthOptions{}},
			{"Both sources", SynthOptions{File: rulePath, RulesDir: dir}},
			{"Rules without id", SynthOptions{RulesDir: dir}},
			{"Missing file", SynthOptions{File: filepath.Join(dir, "missing.yaml")}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Error(t, RunSynth(ctx, tt.opts, logging.NewNop(), &bytes.Buffer{}))
			})
		}
	})
}

func TestExpandPaths(t *testing.T) {
	dir := writeFixtures(t)

	files, err := ExpandPaths([]string{dir, filepath.Join(dir, "notes.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "dangling.json"),
		filepath.Join(dir, "isolated.yaml"),
		filepath.Join(dir, "ok.yaml"),
		filepath.Join(dir, "vip.yaml"),
		filepath.Join(dir, "notes.txt"),
	}, files)

	_, err = ExpandPaths([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
