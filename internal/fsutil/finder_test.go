package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt", "nested/c.hcl", ".hidden/d.hcl"} {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o600))
	}

	// --- Act ---
	files, err := FindFilesByExtension(root, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
