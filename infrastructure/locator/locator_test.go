package locator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/terradex/infrastructure/locator"
)

// writeTree creates directories with optional declaration files under root.
func writeTree(t *testing.T, root string, dirs map[string]bool) {
	t.Helper()
	for dir, withDeclaration := range dirs {
		full := filepath.Join(root, filepath.FromSlash(dir))
		require.NoError(t, os.MkdirAll(full, 0o750))
		if withDeclaration {
			require.NoError(t, os.WriteFile(filepath.Join(full, "main.tf"), []byte(`# module`), 0o600))
		}
	}
}

func TestFindModuleRoots(t *testing.T) {
	t.Parallel()

	t.Run("should find nested roots in lexicographic order", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":                 true,
			"modules/a":         true,
			"modules/a/nested":  true,
			"modules/b":         false,
			"modules/b/deep":    true,
			"docs":              false,
		})

		// when
		roots, err := locator.FindModuleRoots(root, ".", true, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{".", "modules/a", "modules/a/nested", "modules/b/deep"}, roots)
	})

	t.Run("should only test base path in non-recursive mode", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":         true,
			"modules/a": true,
		})

		// when
		roots, err := locator.FindModuleRoots(root, ".", false, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"."}, roots)
	})

	t.Run("should return nothing when base path has no declaration files", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{"docs": false})

		// when
		roots, err := locator.FindModuleRoots(root, "docs", false, nil)

		// then
		require.NoError(t, err)
		assert.Empty(t, roots)
	})

	t.Run("should scan a base path below the tree root", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":                true,
			"modules/network":  true,
			"modules/compute":  true,
		})

		// when
		roots, err := locator.FindModuleRoots(root, "modules", true, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"modules/compute", "modules/network"}, roots)
	})

	t.Run("should prune excluded prefixes entirely", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":                         true,
			"modules/deprecated":        true,
			"modules/deprecated/nested": true,
			"modules/live":              true,
		})

		// when
		roots, err := locator.FindModuleRoots(root, ".", true, []string{"modules/deprecated"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{".", "modules/live"}, roots)
	})

	t.Run("should not descend into vcs internals", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":                  true,
			".git/objects":       true,
			".terraform/modules": true,
		})

		// when
		roots, err := locator.FindModuleRoots(root, ".", true, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"."}, roots)
	})

	t.Run("should skip unreadable subdirectories without losing siblings", func(t *testing.T) {
		t.Parallel()
		if os.Geteuid() == 0 {
			t.Skip("directory permissions are not enforced for root")
		}

		// given
		root := t.TempDir()
		writeTree(t, root, map[string]bool{
			".":            true,
			"modules/bad":  true,
			"modules/good": true,
		})
		badDir := filepath.Join(root, "modules", "bad")
		require.NoError(t, os.Chmod(badDir, 0o000))
		t.Cleanup(func() { _ = os.Chmod(badDir, 0o750) })

		// when
		roots, err := locator.FindModuleRoots(root, ".", true, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{".", "modules/good"}, roots)
	})

	t.Run("should fail for nonexistent base path", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()

		// when
		roots, err := locator.FindModuleRoots(root, "missing", true, nil)

		// then
		require.Error(t, err)
		assert.Nil(t, roots)
		assert.Contains(t, err.Error(), "failed to access scan path")
	})

	t.Run("should fail when base path is a file", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.tf"), []byte(`# module`), 0o600))

		// when
		roots, err := locator.FindModuleRoots(root, "main.tf", true, nil)

		// then
		require.Error(t, err)
		assert.Nil(t, roots)
		assert.Contains(t, err.Error(), "is not a directory")
	})
}
