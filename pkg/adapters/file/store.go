package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/ruleflow/pkg/domain"
)

// Store implements ports.WorkflowStore using the local filesystem.
// It stores workflows as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".ruleflow/workflows".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".ruleflow", "workflows")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("workflow id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("workflow id %q is not a valid file name", id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save persists the workflow to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, wf *domain.Workflow) error {
	destPath, err := s.path(wf.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure workflow directory: %w", err)
	}

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	// The .tmp extension keeps in-flight files out of List.
	tmpFile, err := os.CreateTemp(s.BasePath, wf.ID+".json.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing workflow file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to workflow file: %w", err)
	}

	return nil
}

// Load retrieves the workflow from its JSON file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workflow, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf domain.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return &wf, nil
}

// Delete removes the workflow file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete workflow file: %w", err)
	}

	return nil
}

// List returns all stored workflow IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)

	return ids, nil
}
