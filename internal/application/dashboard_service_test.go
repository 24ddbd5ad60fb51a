package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/analytics"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	service  *DashboardService
	datasets *testutils.MockDatasetProvider
	renderer *testutils.MockChartRenderer
	cache    *testutils.MockCacheService
}

func newDashboardFixture(t *testing.T) dashboardFixture {
	t.Helper()

	catalog, err := analytics.DefaultCatalog()
	require.NoError(t, err)

	f := dashboardFixture{
		datasets: new(testutils.MockDatasetProvider),
		renderer: new(testutils.MockChartRenderer),
		cache:    new(testutils.MockCacheService),
	}
	f.service = NewDashboardService(f.datasets, analytics.NewDashboard(catalog, 5), f.renderer, f.cache, time.Minute)
	return f
}

func TestDashboardService_ViewBuildsAndCaches(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t)
	q := dailyQuery()
	key := DashboardKey("v1", q)

	f.datasets.On("Current").Return(testDataset("v1"), nil)
	f.cache.On("Get", ctx, key).Return(nil, nil)
	f.cache.On("Put", ctx, key, CacheTypeDashboard, mock.Anything, "application/json", "", time.Minute).Return(nil)

	view, err := f.service.View(ctx, q)
	require.NoError(t, err)

	assert.False(t, view.Empty)
	assert.Equal(t, 4, view.Rows)
	assert.Equal(t, "v1", view.DatasetVersion)
	assert.Len(t, view.Preview, 4)
	require.NotNil(t, view.Correlation)
	assert.Equal(t, []string{"weather", "season", "workingday", "weekday"}, chartNames(view))

	weather, ok := view.Chart("weather")
	require.True(t, ok)
	assert.Equal(t, "Misty", weather.Result.Groups[0].Label)
	assert.InDelta(t, 231.0, weather.Result.Groups[0].Value, 1e-9)

	f.cache.AssertExpectations(t)
}

func TestDashboardService_ViewFromCache(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t)

	q := dailyQuery()
	q.Granularity = entities.GranularityHourly

	cached := &entities.APICache{
		Data:        []byte(`{"query":{"granularity":"hourly"},"rows":99,"preview":[{"dteday":"2011-01-01T00:00:00Z","hr":3}]}`),
		ContentType: "application/json",
	}
	f.datasets.On("Current").Return(testDataset("v1"), nil)
	f.cache.On("Get", ctx, DashboardKey("v1", q)).Return(cached, nil)

	view, err := f.service.View(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 99, view.Rows)
	require.Len(t, view.Preview, 1)
	assert.True(t, view.Preview[0].HasHour)
	assert.Equal(t, 3, view.Preview[0].Hour)
	f.cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardService_CacheErrorsDoNotFail(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t)
	q := dailyQuery()

	f.datasets.On("Current").Return(testDataset("v1"), nil)
	f.cache.On("Get", ctx, mock.Anything).Return(nil, errors.New("redis down"))
	f.cache.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	data, err := f.service.ViewJSON(ctx, q)
	require.NoError(t, err)

	var view entities.DashboardView
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, 4, view.Rows)
}

func TestDashboardService_EmptyRange(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t)

	q := dailyQuery()
	q.Start = date("2013-01-01")
	q.End = date("2013-02-01")

	f.datasets.On("Current").Return(testDataset("v1"), nil)
	f.cache.On("Get", ctx, mock.Anything).Return(nil, nil)
	f.cache.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	view, err := f.service.View(ctx, q)
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, entities.NoDataMessage, view.Message)
	assert.Empty(t, view.Charts)

	_, _, err = f.service.RenderChart(ctx, q, "weather")
	assert.ErrorIs(t, err, entities.ErrNoData)
}

func TestDashboardService_InvalidQuery(t *testing.T) {
	f := newDashboardFixture(t)

	q := dailyQuery()
	q.Start, q.End = q.End, q.Start

	_, err := f.service.View(context.Background(), q)
	var verr entities.ValidationError
	assert.True(t, errors.As(err, &verr))
	f.datasets.AssertNotCalled(t, "Current")
}

func TestDashboardService_DatasetNotLoaded(t *testing.T) {
	f := newDashboardFixture(t)
	f.datasets.On("Current").Return(nil, entities.ErrDatasetNotLoaded)

	_, err := f.service.View(context.Background(), dailyQuery())
	assert.ErrorIs(t, err, entities.ErrDatasetNotLoaded)
}

func TestDashboardService_RenderChart(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown chart", func(t *testing.T) {
		f := newDashboardFixture(t)
		_, _, err := f.service.RenderChart(ctx, dailyQuery(), "pie")
		assert.ErrorIs(t, err, entities.ErrChartNotFound)
	})

	t.Run("hourly chart on daily data", func(t *testing.T) {
		f := newDashboardFixture(t)
		_, _, err := f.service.RenderChart(ctx, dailyQuery(), "hourly")
		assert.ErrorIs(t, err, entities.ErrChartNotFound)
	})

	t.Run("renders and caches", func(t *testing.T) {
		f := newDashboardFixture(t)
		q := dailyQuery()
		chartKey := ChartKey("v1", "weather", q)

		f.datasets.On("Current").Return(testDataset("v1"), nil)
		f.cache.On("Get", ctx, chartKey).Return(nil, nil)
		f.cache.On("Get", ctx, DashboardKey("v1", q)).Return(nil, nil)
		f.cache.On("Put", ctx, DashboardKey("v1", q), CacheTypeDashboard, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.renderer.On("Render", mock.Anything, mock.MatchedBy(func(c entities.ChartData) bool {
			return c.Name == "weather"
		}), []entities.DistributionSummary(nil)).Return(nil, []byte("<svg/>"))
		f.renderer.On("ContentType").Return("image/svg+xml")
		f.cache.On("Put", ctx, chartKey, CacheTypeChart, []byte("<svg/>"), "image/svg+xml", "weather", time.Minute).Return(nil)

		data, contentType, err := f.service.RenderChart(ctx, q, "weather")
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(data))
		assert.Equal(t, "image/svg+xml", contentType)
		f.cache.AssertExpectations(t)
	})

	t.Run("distribution chart gets summaries", func(t *testing.T) {
		f := newDashboardFixture(t)
		q := dailyQuery()

		f.datasets.On("Current").Return(testDataset("v1"), nil)
		f.cache.On("Get", ctx, mock.Anything).Return(nil, nil)
		f.cache.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.renderer.On("Render", mock.Anything, mock.Anything, mock.MatchedBy(func(d []entities.DistributionSummary) bool {
			return len(d) == 2 && d[0].Label == "Holiday" && d[1].Label == "Workday"
		})).Return(nil, []byte("<svg/>"))
		f.renderer.On("ContentType").Return("image/svg+xml")

		_, _, err := f.service.RenderChart(ctx, q, "workingday")
		require.NoError(t, err)
		f.renderer.AssertExpectations(t)
	})

	t.Run("served from cache", func(t *testing.T) {
		f := newDashboardFixture(t)
		q := dailyQuery()

		f.datasets.On("Current").Return(testDataset("v1"), nil)
		f.cache.On("Get", ctx, ChartKey("v1", "season", q)).Return(&entities.APICache{
			Data:        []byte("png-bytes"),
			ContentType: "image/png",
		}, nil)

		data, contentType, err := f.service.RenderChart(ctx, q, "season")
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
		assert.Equal(t, "image/png", contentType)
		f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDashboardService_Charts(t *testing.T) {
	f := newDashboardFixture(t)

	assert.Len(t, f.service.Charts(entities.GranularityDaily), 4)
	assert.Len(t, f.service.Charts(entities.GranularityHourly), 5)
	assert.Len(t, f.service.Charts(""), 5)
}

func chartNames(view *entities.DashboardView) []string {
	names := make([]string, len(view.Charts))
	for i, c := range view.Charts {
		names[i] = c.Name
	}
	return names
}
