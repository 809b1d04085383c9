package report

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"hotel-analytics-backend/internal/analytics"
)

// Cache stores computed reports by key.
type Cache interface {
	Get(ctx context.Context, key string) (*analytics.Report, bool, error)
	Set(ctx context.Context, key string, value *analytics.Report, ttl time.Duration) error
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(_ context.Context, _ string) (*analytics.Report, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(_ context.Context, _ string, _ *analytics.Report, _ time.Duration) error {
	return nil
}

// MemoryCache keeps reports in process memory.
type MemoryCache struct {
	store *cache.Cache
}

// NewMemoryCache creates an in-process cache whose expired entries are purged
// every cleanup interval.
func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{store: cache.New(defaultTTL, cleanup)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*analytics.Report, bool, error) {
	v, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}
	r := v.(analytics.Report)
	return &r, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value *analytics.Report, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	c.store.Set(key, *value, ttl)
	return nil
}
