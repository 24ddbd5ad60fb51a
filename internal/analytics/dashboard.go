package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
)

// Dashboard assembles the full dashboard view for one query.
type Dashboard struct {
	catalog     *Catalog
	previewRows int
	now         func() time.Time
}

func NewDashboard(catalog *Catalog, previewRows int) *Dashboard {
	return &Dashboard{
		catalog:     catalog,
		previewRows: previewRows,
		now:         time.Now,
	}
}

func (d *Dashboard) Catalog() *Catalog {
	return d.catalog
}

// Build runs filter, aggregation, correlation and distribution over the
// table selected by the query. An empty date range produces a view with
// Empty set and no charts.
func (d *Dashboard) Build(dataset *entities.Dataset, query entities.DashboardQuery) (*entities.DashboardView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if dataset == nil {
		return nil, entities.ErrDatasetNotLoaded
	}

	view := &entities.DashboardView{
		Query:          query,
		DatasetVersion: dataset.Version,
		GeneratedAt:    d.now(),
	}

	filtered, err := Filter(dataset.Table(query.Granularity), FilterOptions{
		Start:    query.Start,
		End:      query.End,
		UserType: query.UserType,
	})
	if errors.Is(err, entities.ErrNoData) {
		view.Empty = true
		view.Message = entities.NoDataMessage
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to filter %s table: %w", query.Granularity, err)
	}

	view.Rows = filtered.Len()

	correlation, err := Correlate(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to compute correlation: %w", err)
	}
	view.Correlation = &correlation

	for _, spec := range d.catalog.For(query.Granularity) {
		chart, err := spec.Build(filtered)
		if err != nil {
			return nil, err
		}
		view.Charts = append(view.Charts, chart)

		if spec.Kind == entities.ChartKindDistribution && view.Distribution == nil {
			summary, err := Distribute(filtered, spec.GroupBy, spec.Metric, spec.LabelMap())
			if err != nil {
				return nil, fmt.Errorf("chart %s: %w", spec.Name, err)
			}
			view.Distribution = summary
		}
	}

	if query.Preview {
		view.Preview = filtered.Head(d.previewRows)
	}

	return view, nil
}
