package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/ruleflow/pkg/adapters/file"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlWorkflow = `
name: Approval
nodes:
  - id: s
    type: start
    label: Start
  - id: d
    type: decision
    label: Is adult?
  - id: e
    type: end
    label: Done
edges:
  - source: s
    target: d
  - source: d
    target: e
    sourceHandle: "true"
  - source: d
    target: e
    sourceHandle: "false"
`

func TestLoadWorkflow_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "approval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlWorkflow), 0644))

	wf, err := file.LoadWorkflow(path)
	require.NoError(t, err)

	assert.Equal(t, "approval", wf.ID, "id defaults to the file name")
	assert.Equal(t, "Approval", wf.Name)
	require.Len(t, wf.Nodes, 3)
	assert.Equal(t, domain.NodeTypeDecision, wf.Nodes[1].Type)
	require.Len(t, wf.Edges, 3)
	assert.Equal(t, domain.HandleTrue, wf.Edges[1].SourceHandle)
	assert.Equal(t, domain.HandleFalse, wf.Edges[2].SourceHandle)
}

func TestParseWorkflow_JSON(t *testing.T) {
	data := []byte(`{"id":"wf-1","nodes":[{"id":"s","type":"start"}],"edges":[]}`)

	wf, err := file.ParseWorkflow("whatever.json", data)
	require.NoError(t, err)
	assert.Equal(t, "wf-1", wf.ID)
	require.Len(t, wf.Nodes, 1)
}

func TestParseWorkflow_Malformed(t *testing.T) {
	_, err := file.ParseWorkflow("broken.json", []byte(`{"nodes": [`))
	assert.Error(t, err)

	_, err = file.ParseWorkflow("broken.yaml", []byte("nodes: [unterminated"))
	assert.Error(t, err)
}

func TestLoadWorkflow_MissingFile(t *testing.T) {
	_, err := file.LoadWorkflow(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adult.yml")
	content := `
name: Adult check
enabled: true
conditions:
  - field: user.age
    operator: ">="
    value: "18"
  - field: user.verified
    operator: "=="
    value: "true"
input_schema:
  user.age: number
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := file.LoadRule(path)
	require.NoError(t, err)
	assert.Equal(t, "adult", r.ID)
	assert.True(t, r.Enabled)
	require.Len(t, r.Conditions, 2)
	assert.Equal(t, domain.Condition{Field: "user.age", Operator: ">=", Value: "18"}, r.Conditions[0])
	assert.Equal(t, "number", r.InputSchema["user.age"])
}
