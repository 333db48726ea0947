package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/config"
)

func storeBackends(t *testing.T) map[string]KeyValueStore {
	t.Helper()
	dir := t.TempDir()

	bolt, err := OpenBolt(filepath.Join(dir, "nested", "store.bolt"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	db, err := NewDB(filepath.Join(dir, "db", "store.db"))
	require.NoError(t, err)
	sqlite := NewSQLiteStore(db)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]KeyValueStore{
		"memory": NewMemoryStore(),
		"bolt":   bolt,
		"sqlite": sqlite,
	}
}

func TestKeyValueStores(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.Set(ctx, TasksKey, []byte(`[1]`)))
			require.NoError(t, store.Set(ctx, TasksKey, []byte(`[2]`)))
			value, found, err := store.Get(ctx, TasksKey)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `[2]`, string(value), "last writer wins")

			require.NoError(t, store.Set(ctx, ThemeKey, []byte(`true`)))
			value, _, err = store.Get(ctx, TasksKey)
			require.NoError(t, err)
			assert.Equal(t, `[2]`, string(value), "keys are independent")
		})
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.bolt")
	ctx := context.Background()

	store, err := OpenBolt(path, "planner")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, ThemeKey, []byte("true")))
	require.NoError(t, store.Close())

	reopened, err := OpenBolt(path, "planner")
	require.NoError(t, err)
	defer reopened.Close()

	value, found, err := reopened.Get(ctx, ThemeKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", string(value))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, cfg := range []config.StorageConfig{
		{Driver: config.DriverMemory},
		{Driver: config.DriverBolt, BoltPath: filepath.Join(dir, "open.bolt")},
		{Driver: config.DriverSQLite, DatabaseURL: filepath.Join(dir, "open.db")},
	} {
		t.Run(cfg.Driver, func(t *testing.T) {
			store, closeStore, err := Open(cfg)
			require.NoError(t, err)
			require.NotNil(t, store)
			assert.NoError(t, closeStore())
		})
	}

	_, closeStore, err := Open(config.StorageConfig{Driver: "etcd"})
	assert.Error(t, err)
	assert.NotNil(t, closeStore)
}

func TestEnsureDirForSQLite(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ensureDirForSQLite(":memory:"))
	assert.NoError(t, ensureDirForSQLite("file::memory:?cache=shared"))
	require.NoError(t, ensureDirForSQLite("file:"+filepath.Join(dir, "a", "b.db")+"?_busy_timeout=5000"))
	assert.DirExists(t, filepath.Join(dir, "a"))
}
