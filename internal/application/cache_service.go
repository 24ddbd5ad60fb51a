package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

const (
	CacheTypeDashboard = "dashboard"
	CacheTypeChart     = "chart"
	CacheTypeExport    = "export"
)

type CacheService struct {
	cache      ports.Cache
	defaultTTL time.Duration
	logger     logger.Logger
}

func NewCacheService(cache ports.Cache, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		cache:      cache,
		defaultTTL: defaultTTL,
		logger:     logger.Component("cache_service"),
	}
}

// Get returns nil, nil on a miss and for entries past their expiry.
func (s *CacheService) Get(ctx context.Context, key string) (entities.APICacheEntity, error) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.IsExpired() {
		return nil, nil
	}
	return entry, nil
}

func (s *CacheService) Put(ctx context.Context, key, cacheType string, data []byte, contentType, fileName string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	entry := &entities.APICache{
		ID:             uuid.New().String(),
		CacheKey:       key,
		CacheType:      cacheType,
		Data:           data,
		ContentType:    contentType,
		FileName:       fileName,
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	return s.cache.Set(ctx, key, entry, ttl)
}

// InvalidateDataset drops every cached dashboard and chart. Exports are left
// alone since they are snapshots tied to their own dataset version.
func (s *CacheService) InvalidateDataset(ctx context.Context) error {
	for _, prefix := range []string{CacheTypeDashboard, CacheTypeChart} {
		if err := s.cache.DeleteByPattern(ctx, prefix+":*"); err != nil {
			return fmt.Errorf("failed to invalidate %s cache: %w", prefix, err)
		}
	}
	s.logger.Info("Dashboard cache invalidated")
	return nil
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	return s.cache.HealthCheck(ctx)
}

func DashboardKey(version string, query entities.DashboardQuery) string {
	return fmt.Sprintf("%s:%s:%s", CacheTypeDashboard, version, query.CacheKey())
}

func ChartKey(version, name string, query entities.DashboardQuery) string {
	return fmt.Sprintf("%s:%s:%s:%s", CacheTypeChart, version, name, query.CacheKey())
}

func ExportKey(id string) string {
	return CacheTypeExport + ":" + id
}
