package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceFile(t *testing.T) {
	t.Run("Creates Collection File", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "customers.json")

		require.NoError(t, replaceFile(filename, []byte("[]\n")))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(got))
	})

	t.Run("Replaces Previous Content", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "quotes.json")
		require.NoError(t, os.WriteFile(filename, []byte(`[{"id": 1}]`), 0644))

		require.NoError(t, replaceFile(filename, []byte(`[{"id": 2}]`)))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, `[{"id": 2}]`, string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < 3; i++ {
			require.NoError(t, replaceFile(filepath.Join(dir, "projects.json"), []byte("[]")))
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover %s", e.Name())
		}
		assert.Len(t, entries, 1)
	})

	t.Run("Keeps Existing Mode", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "vendors.json")
		require.NoError(t, os.WriteFile(filename, []byte("[]"), 0600))
		require.NoError(t, os.Chmod(filename, 0600))

		require.NoError(t, replaceFile(filename, []byte(`[{"id": 1}]`)))

		info, err := os.Stat(filename)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing", "customers.json")
		assert.Error(t, replaceFile(filename, []byte("[]")))
	})
}
