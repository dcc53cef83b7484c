package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreOperations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	s := NewStore(dir)

	t.Run("load missing file", func(t *testing.T) {
		st, err := s.Load()
		require.NoError(t, err)
		assert.Empty(t, st)
		assert.NoFileExists(t, s.Path())
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set("results.E1", "results-20240102.zip"))
		got, err := s.GetString("results.E1")
		require.NoError(t, err)
		assert.Equal(t, "results-20240102.zip", got)
		assert.NoFileExists(t, s.Path()+".tmp")
	})

	t.Run("visible to another store", func(t *testing.T) {
		got, err := NewStore(dir).GetString("results.E1")
		require.NoError(t, err)
		assert.Equal(t, "results-20240102.zip", got)
	})

	t.Run("non-string value", func(t *testing.T) {
		require.NoError(t, s.Set("count", 3))
		got, err := s.GetString("count")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set("results.E1", "results-20240103.zip"))
		got, err := s.GetString("results.E1")
		require.NoError(t, err)
		assert.Equal(t, "results-20240103.zip", got)
	})
}

func TestStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not yaml"), 0644))

	_, err := NewStore(dir).Load()
	assert.Error(t, err)
}
