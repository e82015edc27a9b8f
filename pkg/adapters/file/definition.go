package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/ruleflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// decode parses data as JSON when path ends in .json and as YAML otherwise.
func decode(path string, data []byte, out any) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	// Default to YAML
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ParseWorkflow decodes a workflow definition. name selects the format by extension.
// When the definition carries no id, it defaults to the file name without extension.
func ParseWorkflow(name string, data []byte) (*domain.Workflow, error) {
	var wf domain.Workflow
	if err := decode(name, data, &wf); err != nil {
		return nil, err
	}
	if wf.ID == "" {
		base := filepath.Base(name)
		wf.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &wf, nil
}

// LoadWorkflow reads a workflow definition file (YAML or JSON).
func LoadWorkflow(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow definition: %w", err)
	}
	return ParseWorkflow(path, data)
}

// LoadRule reads a single rule definition file (YAML or JSON).
func LoadRule(path string) (*domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule definition: %w", err)
	}

	var r domain.Rule
	if err := decode(path, data, &r); err != nil {
		return nil, err
	}
	if r.ID == "" {
		base := filepath.Base(path)
		r.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &r, nil
}
