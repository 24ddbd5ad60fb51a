package ports

import (
	"context"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type ExportRepository interface {
	SaveExport(ctx context.Context, export entities.ExportReportEntity) error
	FindExportByID(ctx context.Context, id string) (entities.ExportReportEntity, error)
	FindExpiredExports(ctx context.Context) ([]entities.ExportReportEntity, error)
	DeleteExport(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
	Close() error
}
