package ports

import (
	"context"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type DatasetLoader interface {
	Load(ctx context.Context) (*entities.Dataset, error)
}

type DatasetProvider interface {
	Current() (*entities.Dataset, error)
	Info() (entities.DatasetInfo, error)
	Reload(ctx context.Context) error
	HandleEvent(ctx context.Context, event entities.DatasetEvent) error
	HealthCheck(ctx context.Context) error
}
