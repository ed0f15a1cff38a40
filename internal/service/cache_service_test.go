package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/class-record-api/pkg/errors"
)

type memoryCache struct {
	entries     map[string][]byte
	invalidated []string
	getErr      error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestCachedLoadsOnceWhenEnabled(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	calls := 0
	load := func() (int, error) {
		calls++
		return 92, nil
	}

	for i := 0; i < 2; i++ {
		v, err := cached(context.Background(), cache, "k", load)
		require.NoError(t, err)
		assert.Equal(t, 92, v)
	}
	assert.Equal(t, 1, calls)

	cache.Invalidate(context.Background(), "k*")
	_, err := cached(context.Background(), cache, "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachedDisabledAndFailingCache(t *testing.T) {
	repo := newMemoryCache()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	_, err := cached(context.Background(), disabled, "k", func() (string, error) { return "x", nil })
	require.NoError(t, err)
	assert.Empty(t, repo.entries)

	repo.getErr = errors.New("redis down")
	failing := NewCacheService(repo, nil, 0, nil, true)
	v, err := cached(context.Background(), failing, "k", func() (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}
