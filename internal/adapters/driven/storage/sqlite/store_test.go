package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite cache for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

// TestNewStore_CreatesDatabase tests that the database file and schema exist.
func TestNewStore_CreatesDatabase(t *testing.T) {
	store := setupTestStore(t)

	assert.FileExists(t, store.Path())

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

// TestNewStore_ReopenSkipsMigrations tests that reopening does not rerun migrations.
func TestNewStore_ReopenSkipsMigrations(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "k", []byte("v"), 0))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	got, ok, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

// TestStore_SetGet tests storing, overwriting and reading values.
func TestStore_SetGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "analysis:abc", []byte(`{"id":"1"}`), time.Hour))
	require.NoError(t, store.Set(ctx, "analysis:abc", []byte(`{"id":"2"}`), time.Hour))

	got, ok, err := store.Get(ctx, "analysis:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"2"}`, string(got))

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestStore_Expiry tests that expired entries are not returned and get pruned.
func TestStore_Expiry(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "other", []byte("2"), time.Minute))
	require.NoError(t, store.Set(ctx, "forever", []byte("3"), 0))

	now = now.Add(2 * time.Minute)

	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	pruned, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	_, ok, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestStore_DeleteClear tests removal.
func TestStore_DeleteClear(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", nil, 0))

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)

	got, ok, _ := store.Get(ctx, "b")
	assert.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, store.Clear(ctx))
	_, ok, _ = store.Get(ctx, "b")
	assert.False(t, ok)
}
