package ports

import (
	"context"
	"io"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type DashboardService interface {
	View(ctx context.Context, query entities.DashboardQuery) (*entities.DashboardView, error)
	ViewJSON(ctx context.Context, query entities.DashboardQuery) ([]byte, error)
	RenderChart(ctx context.Context, query entities.DashboardQuery, name string) ([]byte, string, error)
	Charts(granularity entities.Granularity) []entities.ChartInfo
	HealthCheck(ctx context.Context) error
}

type ExportService interface {
	CreateExport(ctx context.Context, query entities.DashboardQuery) (entities.ExportReportEntity, error)
	GetExport(ctx context.Context, id string) (entities.ExportReportEntity, error)
	DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error)
	CleanupExpiredExports(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
}

type CacheService interface {
	Get(ctx context.Context, key string) (entities.APICacheEntity, error)
	Put(ctx context.Context, key, cacheType string, data []byte, contentType, fileName string, ttl time.Duration) error
	InvalidateDataset(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

type APIServer interface {
	Start() error
	Stop(ctx context.Context) error
}
