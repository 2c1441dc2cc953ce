package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pvb-admin/internal/repositories"
	"pvb-admin/pkg/metrics"

	"go.uber.org/zap"
)

// readCache serves JSON encoded read models. A failing cache never fails the request:
// errors are logged and the loader result is returned.
type readCache struct {
	cache  repositories.CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func newReadCache(cache repositories.CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) readCache {
	return readCache{cache: cache, ttl: ttl, logger: logger}
}

func cached[T any](ctx context.Context, rc readCache, key string, load func(context.Context) (T, error)) (T, error) {
	if rc.cache != nil {
		raw, err := rc.cache.Get(ctx, key)
		switch {
		case err == nil:
			var value T
			if jsonErr := json.Unmarshal([]byte(raw), &value); jsonErr == nil {
				metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
				return value, nil
			}
			rc.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		case !errors.Is(err, repositories.ErrCacheMiss):
			rc.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	value, err := load(ctx)
	if err != nil || rc.cache == nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		rc.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := rc.cache.Set(ctx, key, string(encoded), rc.ttl); err != nil {
		rc.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func (rc readCache) invalidate(ctx context.Context, keys ...string) {
	if rc.cache == nil {
		return
	}
	if err := rc.cache.Del(ctx, keys...); err != nil {
		rc.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
