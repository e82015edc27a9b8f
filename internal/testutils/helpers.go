package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles seeds dir with the given name -> content pairs.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}
