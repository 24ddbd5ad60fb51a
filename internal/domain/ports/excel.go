package ports

import (
	"context"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type ExcelGenerator interface {
	GenerateDashboardReport(ctx context.Context, view *entities.DashboardView) ([]byte, error)
}
