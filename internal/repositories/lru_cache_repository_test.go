package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheRepository(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCacheRepository(2, time.Minute)

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "a", "1", 0))
	require.NoError(t, cache.Set(ctx, "b", "2", 0))
	got, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	// "b" is now least recently used and gets evicted.
	require.NoError(t, cache.Set(ctx, "c", "3", 0))
	_, err = cache.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.Del(ctx, "a", "c"))
	_, err = cache.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLRUCacheRepositoryExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCacheRepository(4, 20*time.Millisecond)

	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	assert.Eventually(t, func() bool {
		_, err := cache.Get(ctx, "k")
		return err == ErrCacheMiss
	}, time.Second, 10*time.Millisecond)
}
