package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pvb-admin/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Del(context.Context, ...string) error { return errors.New("connection refused") }

func countingLoader(calls *int) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) {
		*calls++
		return []string{"Laptop", "Monitor"}, nil
	}
}

func TestCachedServesSecondReadFromCache(t *testing.T) {
	rc := newReadCache(repositories.NewLRUCacheRepository(8, time.Minute), time.Minute, zap.NewNop())
	calls := 0

	for i := 0; i < 3; i++ {
		got, err := cached(context.Background(), rc, "hardware:list", countingLoader(&calls))
		require.NoError(t, err)
		assert.Equal(t, []string{"Laptop", "Monitor"}, got)
	}
	assert.Equal(t, 1, calls)

	rc.invalidate(context.Background(), "hardware:list")
	_, err := cached(context.Background(), rc, "hardware:list", countingLoader(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedSurvivesBrokenCache(t *testing.T) {
	rc := newReadCache(brokenCache{}, time.Minute, zap.NewNop())
	calls := 0

	got, err := cached(context.Background(), rc, "hardware:list", countingLoader(&calls))
	require.NoError(t, err)
	assert.Len(t, got, 2)
	rc.invalidate(context.Background(), "hardware:list")
}

func TestCachedWithoutCacheAlwaysLoads(t *testing.T) {
	rc := newReadCache(nil, time.Minute, zap.NewNop())
	calls := 0

	for i := 0; i < 2; i++ {
		_, err := cached(context.Background(), rc, "k", countingLoader(&calls))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	rc := newReadCache(repositories.NewLRUCacheRepository(8, time.Minute), time.Minute, zap.NewNop())
	_, err := cached(context.Background(), rc, "k", func(context.Context) ([]string, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)

	calls := 0
	_, err = cached(context.Background(), rc, "k", countingLoader(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
