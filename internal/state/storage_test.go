package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".aot", "loop-state.md")
	store := NewStore(path)
	assert.False(t, store.Exists())

	doc := sampleDocument()
	require.NoError(t, store.Save(doc))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
}

func TestStoreLoad_NotFound(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.md"))
	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state file not found")
}

func TestStoreLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.md")
	require.NoError(t, os.WriteFile(path, []byte("not a state document"), 0o644))

	_, err := NewStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestStoreDefaultPath(t *testing.T) {
	store := NewStore("")
	assert.Equal(t, DefaultStatePath, store.Path())
}
