package ports

import (
	"io"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

type ChartRenderer interface {
	Render(w io.Writer, chart entities.ChartData, distribution []entities.DistributionSummary) error
	ContentType() string
}
