package insightcache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Put(ctx, "k1", "raw response"))

	value, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "raw response", value)
}

func TestMemoryCacheOverwriteKeepsOneEntryPerKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k1", "first"))
	require.NoError(t, cache.Put(ctx, "k1", "second"))

	value, ok, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", value)
	require.Len(t, cache.entries, 1)
}

func TestMemoryCacheIgnoresEmptyKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "", "value"))

	_, ok, err := cache.Get(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, cache.entries)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = cache.Put(ctx, "shared", "value")
				_, _, _ = cache.Get(ctx, "shared")
			}
		}()
	}
	wg.Wait()

	value, ok, err := cache.Get(ctx, "shared")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "value", value)
}
