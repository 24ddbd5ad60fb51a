package ports

import (
	"context"
	"io"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type Storage interface {
	Upload(ctx context.Context, bucket, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	HealthCheck(ctx context.Context) error
}

type ExportStorage interface {
	UploadExport(ctx context.Context, export entities.ExportReportEntity, data io.Reader) (string, error)
	DownloadExport(ctx context.Context, export entities.ExportReportEntity) (io.ReadCloser, error)
	DeleteExport(ctx context.Context, export entities.ExportReportEntity) error
	HealthCheck(ctx context.Context) error
}
