package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.hcl", "nested/b.hcl", "ignored.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	t.Run("directory is walked recursively", func(t *testing.T) {
		files, err := FindFilesByExtension([]string{dir}, ".hcl")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.hcl"),
			filepath.Join(dir, "nested", "b.hcl"),
		}, files)
	})

	t.Run("plain file is taken as-is", func(t *testing.T) {
		file := filepath.Join(dir, "ignored.txt")
		files, err := FindFilesByExtension([]string{file}, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{file}, files)
	})

	t.Run("duplicates are dropped", func(t *testing.T) {
		file := filepath.Join(dir, "a.hcl")
		files, err := FindFilesByExtension([]string{file, file, dir}, ".hcl")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.hcl"),
			filepath.Join(dir, "nested", "b.hcl"),
		}, files)
	})

	t.Run("missing path errors", func(t *testing.T) {
		_, err := FindFilesByExtension([]string{filepath.Join(dir, "gone")}, ".hcl")
		assert.ErrorContains(t, err, "error accessing path")
	})
}
