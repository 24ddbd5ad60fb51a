package cache

import (
	"context"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

// NopCache is used when Redis is disabled. Every lookup misses.
type NopCache struct{}

func NewNopCache() *NopCache {
	return &NopCache{}
}

func (NopCache) Get(ctx context.Context, key string) (entities.APICacheEntity, error) {
	return nil, nil
}

func (NopCache) Set(ctx context.Context, key string, data entities.APICacheEntity, ttl time.Duration) error {
	return nil
}

func (NopCache) Delete(ctx context.Context, key string) error { return nil }

func (NopCache) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

func (NopCache) HealthCheck(ctx context.Context) error { return nil }

func (NopCache) Close() error { return nil }
