package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/analytics"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/samber/lo"
)

const jsonContentType = "application/json"

type DashboardService struct {
	datasets  ports.DatasetProvider
	dashboard *analytics.Dashboard
	renderer  ports.ChartRenderer
	cache     ports.CacheService
	ttl       time.Duration
	logger    logger.Logger
}

func NewDashboardService(
	datasets ports.DatasetProvider,
	dashboard *analytics.Dashboard,
	renderer ports.ChartRenderer,
	cache ports.CacheService,
	ttl time.Duration,
) *DashboardService {
	return &DashboardService{
		datasets:  datasets,
		dashboard: dashboard,
		renderer:  renderer,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.Component("dashboard_service"),
	}
}

func (s *DashboardService) View(ctx context.Context, query entities.DashboardQuery) (*entities.DashboardView, error) {
	data, err := s.ViewJSON(ctx, query)
	if err != nil {
		return nil, err
	}

	var view entities.DashboardView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard view: %w", err)
	}
	restoreHourFlags(&view)
	return &view, nil
}

// ViewJSON returns the encoded dashboard view, served from the cache when
// the same query was answered for the current dataset version.
func (s *DashboardService) ViewJSON(ctx context.Context, query entities.DashboardQuery) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, err
	}

	key := DashboardKey(ds.Version, query)
	if entry := s.cached(ctx, key); entry != nil {
		return entry.GetData(), nil
	}

	view, err := s.dashboard.Build(ds, query)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dashboard view: %w", err)
	}

	if err := s.cache.Put(ctx, key, CacheTypeDashboard, data, jsonContentType, "", s.ttl); err != nil {
		s.logger.Warnf("Failed to cache dashboard %s: %v", key, err)
	}

	s.logger.Debugf("Built dashboard %s with %d rows", key, view.Rows)
	return data, nil
}

// RenderChart returns the rendered image of one catalog chart and its
// content type.
func (s *DashboardService) RenderChart(ctx context.Context, query entities.DashboardQuery, name string) ([]byte, string, error) {
	spec, ok := s.dashboard.Catalog().Find(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", entities.ErrChartNotFound, name)
	}
	if !spec.AppliesTo(query.Granularity) {
		return nil, "", fmt.Errorf("%w: %s is not available for %s data", entities.ErrChartNotFound, name, query.Granularity)
	}
	if err := query.Validate(); err != nil {
		return nil, "", err
	}

	ds, err := s.datasets.Current()
	if err != nil {
		return nil, "", err
	}

	key := ChartKey(ds.Version, name, query)
	if entry := s.cached(ctx, key); entry != nil {
		return entry.GetData(), entry.GetContentType(), nil
	}

	view, err := s.View(ctx, query)
	if err != nil {
		return nil, "", err
	}
	if view.Empty {
		return nil, "", entities.ErrNoData
	}

	chart, ok := view.Chart(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", entities.ErrChartNotFound, name)
	}

	var distribution []entities.DistributionSummary
	if chart.Kind == entities.ChartKindDistribution && isFirstDistribution(view, name) {
		distribution = view.Distribution
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, chart, distribution); err != nil {
		return nil, "", err
	}

	contentType := s.renderer.ContentType()
	if err := s.cache.Put(ctx, key, CacheTypeChart, buf.Bytes(), contentType, name, s.ttl); err != nil {
		s.logger.Warnf("Failed to cache chart %s: %v", key, err)
	}

	return buf.Bytes(), contentType, nil
}

// Charts lists the catalog charts available for a granularity, or all of
// them when granularity is empty.
func (s *DashboardService) Charts(granularity entities.Granularity) []entities.ChartInfo {
	specs := s.dashboard.Catalog().Charts
	if granularity != "" {
		specs = s.dashboard.Catalog().For(granularity)
	}
	return lo.Map(specs, func(spec analytics.ChartSpec, _ int) entities.ChartInfo {
		return spec.Info()
	})
}

func (s *DashboardService) HealthCheck(ctx context.Context) error {
	if err := s.datasets.HealthCheck(ctx); err != nil {
		return fmt.Errorf("dataset health check failed: %w", err)
	}
	return nil
}

func (s *DashboardService) cached(ctx context.Context, key string) entities.APICacheEntity {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warnf("Cache lookup for %s failed: %v", key, err)
		return nil
	}
	if entry != nil {
		s.logger.Debugf("Cache hit: %s", key)
	}
	return entry
}

func isFirstDistribution(view *entities.DashboardView, name string) bool {
	first, ok := lo.Find(view.Charts, func(c entities.ChartData) bool {
		return c.Kind == entities.ChartKindDistribution
	})
	return ok && first.Name == name
}

// restoreHourFlags marks decoded preview rows of hourly views as carrying an
// hour, which the JSON form does not encode.
func restoreHourFlags(view *entities.DashboardView) {
	if view.Query.Granularity != entities.GranularityHourly {
		return
	}
	for i := range view.Preview {
		view.Preview[i].HasHour = true
	}
}
