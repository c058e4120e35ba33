package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
)

func TestSQLiteBackendSlots(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLiteBackend(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Put(ctx, "k", "one"))
	require.NoError(t, b.Put(ctx, "k", "two"))
	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))
	_, ok, err = b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteBackendPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "todomaster.db")

	b, err := NewSQLiteBackend(path)
	require.NoError(t, err)
	s := New(b, Options{})
	require.NoError(t, s.Save(ctx, sampleState(t)))
	require.NoError(t, s.Close())

	// Reopening must not re-run applied migrations.
	b, err = NewSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	st, err := New(b, Options{}).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.Len())
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, err := OpenBackend(ctx, model.StorageConfig{Backend: model.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = OpenBackend(ctx, model.StorageConfig{Backend: model.BackendSQLite, Path: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())

	_, err = OpenBackend(ctx, model.StorageConfig{Backend: "floppy"})
	require.Error(t, err)
}
