package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAndPrefix(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state", "quanty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "guestMode")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "guestMode", "true"))
	require.NoError(t, store.Set(ctx, "qy-auth-token", "a"))
	require.NoError(t, store.Set(ctx, "qy-auth-token", "b"))
	require.NoError(t, store.Set(ctx, "qy-code-verifier", "c"))
	require.NoError(t, store.Set(ctx, "qy_other", "d"))

	value, ok, err := store.Get(ctx, "qy-auth-token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", value)

	keys, err := store.Keys(ctx, "qy-")
	require.NoError(t, err)
	assert.Equal(t, []string{"qy-auth-token", "qy-code-verifier"}, keys)

	require.NoError(t, store.Remove(ctx, keys...))
	all, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"guestMode", "qy_other"}, all)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quanty.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "guestMode", "true"))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	value, ok, err := reopened.Get(context.Background(), "guestMode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestTransientClearAndExpiry(t *testing.T) {
	cache := NewTransient(2, 50*time.Millisecond)
	cache.Set("a", []byte("1"))
	cache.Set("b", []byte("2"))
	cache.Set("c", []byte("3"))
	assert.Equal(t, 2, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok, "oldest entry evicted")

	cache.Clear()
	assert.Equal(t, 0, cache.Len())

	cache.Set("d", []byte("4"))
	assert.Eventually(t, func() bool {
		_, ok := cache.Get("d")
		return !ok
	}, time.Second, 10*time.Millisecond)
}
