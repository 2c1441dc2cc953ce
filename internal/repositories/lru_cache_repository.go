package repositories

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCacheRepository is the in-process cache used when no Redis address is configured.
// Entries share one TTL; the per-call expiration is ignored.
type LRUCacheRepository struct {
	cache *expirable.LRU[string, string]
}

func NewLRUCacheRepository(size int, ttl time.Duration) CacheRepositoryInterface {
	return &LRUCacheRepository{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (r *LRUCacheRepository) Get(_ context.Context, key string) (string, error) {
	value, ok := r.cache.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (r *LRUCacheRepository) Set(_ context.Context, key string, value string, _ time.Duration) error {
	r.cache.Add(key, value)
	return nil
}

func (r *LRUCacheRepository) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		r.cache.Remove(key)
	}
	return nil
}
