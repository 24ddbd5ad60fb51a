package ports

import (
	"context"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type DatasetEventHandler func(ctx context.Context, event entities.DatasetEvent) error

type Consumer interface {
	Consume(ctx context.Context, handler DatasetEventHandler) error
	Close() error
	HealthCheck(ctx context.Context) error
}

type EventPublisher interface {
	PublishExport(ctx context.Context, event entities.ExportEvent) error
	HealthCheck(ctx context.Context) error
	Close() error
}
