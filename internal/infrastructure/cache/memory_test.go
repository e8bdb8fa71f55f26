package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"
)

func testCacheConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         3,
			TTL:             time.Minute,
			CleanupInterval: time.Minute,
		},
	}
}

func TestManagerDisabled(t *testing.T) {
	cfg := testCacheConfig()
	cfg.Cache.Enabled = false

	manager, err := NewManager(cfg)
	require.NoError(t, err)
	assert.Nil(t, manager)

	// Nil manager is safe to use.
	_, err = manager.Get(context.Background(), "key")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, manager.Set(context.Background(), "key", "value"))
	assert.NoError(t, manager.Close())
}

func TestManagerRoundTrip(t *testing.T) {
	manager, err := NewManager(testCacheConfig())
	require.NoError(t, err)
	require.NotNil(t, manager)
	defer manager.Close()

	ctx := context.Background()
	require.NoError(t, manager.Set(ctx, "dedup:stats:user-1", `{"total_recipes":6}`))

	value, err := manager.Get(ctx, "dedup:stats:user-1")
	require.NoError(t, err)
	assert.Equal(t, `{"total_recipes":6}`, value)

	_, err = manager.Get(ctx, "dedup:stats:user-2")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestMemoryBackendExpiry(t *testing.T) {
	cfg := testCacheConfig()
	backend := newMemoryBackend(&cfg.Cache)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "k", "v", 10*time.Millisecond))

	value, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	time.Sleep(20 * time.Millisecond)

	_, err = backend.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestMemoryBackendEvictsLRUWhenFull(t *testing.T) {
	cfg := testCacheConfig()
	backend := newMemoryBackend(&cfg.Cache)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, backend.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, backend.Set(ctx, "c", "3", time.Minute))

	// Touch everything except "b" so it is the LRU victim.
	_, err := backend.Get(ctx, "a")
	require.NoError(t, err)
	_, err = backend.Get(ctx, "c")
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, "d", "4", time.Minute))

	_, err = backend.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	value, err := backend.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "4", value)
}

func TestMemoryBackendCloseDropsEntries(t *testing.T) {
	cfg := testCacheConfig()
	backend := newMemoryBackend(&cfg.Cache)

	ctx := context.Background()
	require.NoError(t, backend.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, backend.Close())

	_, err := backend.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}
