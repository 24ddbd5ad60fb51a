package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/config"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	dashboards *testutils.MockDashboardService
	exports    *testutils.MockExportService
	datasets   *testutils.MockDatasetProvider
	server     *APIServer
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: 8080, ShutdownTimeout: time.Second},
		Dashboard: config.DashboardConfig{
			CacheTTL: time.Minute,
		},
		Postgres: config.PostgresConfig{Enabled: true},
		Minio:    config.MinioConfig{Enabled: true},
		API: config.APIConfig{
			BasePath:        "/api/v1",
			RateLimit:       100,
			RateLimitWindow: time.Millisecond,
		},
	}
}

func newServerFixture(cfg *config.Config) *serverFixture {
	f := &serverFixture{
		dashboards: new(testutils.MockDashboardService),
		exports:    new(testutils.MockExportService),
		datasets:   new(testutils.MockDatasetProvider),
	}
	middleware := NewMiddleware(cfg.API.RateLimit, cfg.API.RateLimitWindow, cfg.API.CorsAllowedOrigins)
	f.server = NewAPIServer(f.dashboards, f.exports, f.datasets, middleware, cfg)
	return f
}

func (f *serverFixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func datasetInfo() entities.DatasetInfo {
	return entities.DatasetInfo{
		Version:    "v1",
		MinDate:    "2011-01-01",
		MaxDate:    "2012-12-31",
		DailyRows:  731,
		HourlyRows: 17379,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func defaultQuery() entities.DashboardQuery {
	return entities.DashboardQuery{
		Granularity: entities.GranularityDaily,
		UserType:    entities.UserTypeCasual,
		Start:       day(2011, 1, 1),
		End:         day(2012, 12, 31),
	}
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		f := newServerFixture(testConfig())
		f.datasets.On("HealthCheck", mock.Anything).Return(nil)
		f.dashboards.On("HealthCheck", mock.Anything).Return(nil)
		f.exports.On("HealthCheck", mock.Anything).Return(nil)

		rec := f.do(http.MethodGet, "/api/v1/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
		assert.Contains(t, rec.Body.String(), `"exports":"healthy"`)
	})

	t.Run("degraded", func(t *testing.T) {
		f := newServerFixture(testConfig())
		f.datasets.On("HealthCheck", mock.Anything).Return(nil)
		f.dashboards.On("HealthCheck", mock.Anything).Return(nil)
		f.exports.On("HealthCheck", mock.Anything).Return(errors.New("minio down"))

		rec := f.do(http.MethodGet, "/api/v1/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rec.Body.String(), "unhealthy: minio down")
	})
}

func TestGetDataset(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)

	rec := f.do(http.MethodGet, "/api/v1/dataset")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"min_date":"2011-01-01"`)
	assert.Contains(t, rec.Body.String(), `"daily_rows":731`)
}

func TestGetDataset_NotLoaded(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(entities.DatasetInfo{}, entities.ErrDatasetNotLoaded)

	rec := f.do(http.MethodGet, "/api/v1/dataset")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReloadDataset(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newServerFixture(testConfig())
		f.datasets.On("Reload", mock.Anything).Return(nil)
		f.datasets.On("Info").Return(datasetInfo(), nil)

		rec := f.do(http.MethodPost, "/api/v1/dataset/reload")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		f.datasets.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		f := newServerFixture(testConfig())
		f.datasets.On("Reload", mock.Anything).Return(errors.New("missing file"))

		rec := f.do(http.MethodPost, "/api/v1/dataset/reload")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing file")
	})
}

func TestGetDashboard_DefaultsToDatasetBounds(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)
	f.dashboards.On("ViewJSON", mock.Anything, defaultQuery()).Return([]byte(`{"rows":731}`), nil)

	rec := f.do(http.MethodGet, "/api/v1/dashboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rows":731}`, rec.Body.String())
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	f.dashboards.AssertExpectations(t)
}

func TestGetDashboard_ParsesFilters(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)

	want := entities.DashboardQuery{
		Granularity: entities.GranularityHourly,
		UserType:    entities.UserTypeRegistered,
		Start:       day(2011, 3, 1),
		End:         day(2011, 3, 31),
		Preview:     true,
	}
	f.dashboards.On("ViewJSON", mock.Anything, want).Return([]byte(`{}`), nil)

	rec := f.do(http.MethodGet, "/api/v1/dashboard?granularity=hourly&user_type=registered&start=2011-03-01&end=2011-03-31&preview=true")

	assert.Equal(t, http.StatusOK, rec.Code)
	f.dashboards.AssertExpectations(t)
}

func TestGetDashboard_InvalidFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"unknown granularity", "granularity=weekly", "granularity"},
		{"unknown user type", "user_type=all", "user_type"},
		{"bad date", "start=01/02/2011", "invalid date format"},
		{"start after end", "start=2011-05-01&end=2011-04-01", "start must not be after end"},
		{"outside bounds", "start=2010-12-01", "dates must lie between 2011-01-01 and 2012-12-31"},
		{"bad preview", "preview=maybe", "preview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture(testConfig())
			f.datasets.On("Info").Return(datasetInfo(), nil)

			rec := f.do(http.MethodGet, "/api/v1/dashboard?"+tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			f.dashboards.AssertNotCalled(t, "ViewJSON", mock.Anything, mock.Anything)
		})
	}
}

func TestListCharts(t *testing.T) {
	f := newServerFixture(testConfig())
	f.dashboards.On("Charts", entities.GranularityHourly).Return([]entities.ChartInfo{
		{Name: "hourly_rentals", Title: "Rentals by Hour", Kind: entities.ChartKindLine, Granularity: entities.GranularityHourly},
	})

	rec := f.do(http.MethodGet, "/api/v1/charts?granularity=hourly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"hourly_rentals"`)
}

func TestGetChart(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)
	f.dashboards.On("RenderChart", mock.Anything, defaultQuery(), "weather_rentals").
		Return([]byte("<svg></svg>"), "image/svg+xml", nil)

	rec := f.do(http.MethodGet, "/api/v1/charts/weather_rentals")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<svg></svg>", rec.Body.String())
}

func TestGetChart_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown chart", entities.ErrChartNotFound, http.StatusNotFound},
		{"empty range", entities.ErrNoData, http.StatusUnprocessableEntity},
		{"render failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture(testConfig())
			f.datasets.On("Info").Return(datasetInfo(), nil)
			f.dashboards.On("RenderChart", mock.Anything, mock.Anything, "missing").Return(nil, "", tt.err)

			rec := f.do(http.MethodGet, "/api/v1/charts/missing")

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func sampleExport() *entities.ExportReport {
	expires := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	return &entities.ExportReport{
		ID:          "c0ffee",
		Granularity: entities.GranularityDaily,
		UserType:    entities.UserTypeCasual,
		PeriodStart: day(2011, 1, 1),
		PeriodEnd:   day(2012, 12, 31),
		Rows:        731,
		FileName:    "bike_rentals_daily_casual_20110101_20121231.xlsx",
		FileSize:    2048,
		DownloadURL: "/api/v1/exports/c0ffee/download",
		GeneratedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		ExpiresAt:   &expires,
	}
}

func TestCreateExport(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)
	f.exports.On("CreateExport", mock.Anything, defaultQuery()).Return(sampleExport(), nil)

	rec := f.do(http.MethodPost, "/api/v1/exports")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"c0ffee"`)
	assert.Contains(t, rec.Body.String(), `"download_url":"/api/v1/exports/c0ffee/download"`)
}

func TestCreateExport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty range", entities.ErrNoData, http.StatusUnprocessableEntity},
		{"disabled", entities.ErrExportsDisabled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServerFixture(testConfig())
			f.datasets.On("Info").Return(datasetInfo(), nil)
			f.exports.On("CreateExport", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/v1/exports")

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.err.Error())
		})
	}
}

func TestGetExport(t *testing.T) {
	f := newServerFixture(testConfig())
	f.exports.On("GetExport", mock.Anything, "c0ffee").Return(sampleExport(), nil)
	f.exports.On("GetExport", mock.Anything, "gone").Return(nil, entities.ErrExportNotFound)

	rec := f.do(http.MethodGet, "/api/v1/exports/c0ffee")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rows":731`)

	rec = f.do(http.MethodGet, "/api/v1/exports/gone")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadExport(t *testing.T) {
	f := newServerFixture(testConfig())
	f.exports.On("DownloadExport", mock.Anything, "c0ffee").
		Return(io.NopCloser(strings.NewReader("xlsx-bytes")), "report.xlsx", nil)

	rec := f.do(http.MethodGet, "/api/v1/exports/c0ffee/download")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.ExcelContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "xlsx-bytes", rec.Body.String())
}

func TestDownloadExport_NotFound(t *testing.T) {
	f := newServerFixture(testConfig())
	f.exports.On("DownloadExport", mock.Anything, "gone").Return(nil, "", entities.ErrExportNotFound)

	rec := f.do(http.MethodGet, "/api/v1/exports/gone/download")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func sampleView() *entities.DashboardView {
	return &entities.DashboardView{
		Query: defaultQuery(),
		Rows:  731,
		Correlation: &entities.CorrelationMatrix{
			Columns: []string{"cnt", "temp"},
			Values:  [][]float64{{1, 0.54}, {0.54, 1}},
		},
		Preview: []entities.RentalRecord{
			{Date: day(2011, 1, 1), Season: 1, WeatherSit: 2, Casual: 331, Registered: 654, Cnt: 331},
		},
	}
}

func TestDashboardPage(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)
	q := defaultQuery()
	q.Preview = true
	f.dashboards.On("View", mock.Anything, q).Return(sampleView(), nil)
	f.dashboards.On("Charts", entities.GranularityDaily).Return([]entities.ChartInfo{
		{Name: "weather_rentals", Title: "Rentals by Weather"},
	})

	rec := f.do(http.MethodGet, "/?preview=true")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Bike Sharing Dashboard")
	assert.Contains(t, body, `min="2011-01-01"`)
	assert.Contains(t, body, "0.54")
	assert.Contains(t, body, "Rentals by Weather")
	assert.Contains(t, body, "/api/v1/charts/weather_rentals?end=2012-12-31")
	assert.Contains(t, body, "Export to Excel")
	assert.Contains(t, body, "<td>654</td>")
}

func TestDashboardPage_Empty(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)
	f.dashboards.On("View", mock.Anything, mock.Anything).Return(&entities.DashboardView{
		Empty:   true,
		Message: entities.NoDataMessage,
	}, nil)

	rec := f.do(http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), entities.NoDataMessage)
	assert.NotContains(t, rec.Body.String(), "<img")
	f.dashboards.AssertNotCalled(t, "Charts", mock.Anything)
}

func TestDashboardPage_InvalidFilter(t *testing.T) {
	f := newServerFixture(testConfig())
	f.datasets.On("Info").Return(datasetInfo(), nil)

	rec := f.do(http.MethodGet, "/?start=2011-06-01&end=2011-05-01")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "start must not be after end")
}

func TestNoRoute(t *testing.T) {
	f := newServerFixture(testConfig())

	rec := f.do(http.MethodGet, "/api/v1/unknown")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route /api/v1/unknown not found")
}

func TestMiddleware_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.API.RateLimit = 1
	cfg.API.RateLimitWindow = time.Hour
	f := newServerFixture(cfg)
	f.dashboards.On("Charts", mock.Anything).Return([]entities.ChartInfo{})

	first := f.do(http.MethodGet, "/api/v1/charts")
	second := f.do(http.MethodGet, "/api/v1/charts")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestMiddleware_RateLimitSustained(t *testing.T) {
	m := NewMiddleware(100, time.Second, nil)
	assert.InDelta(t, 100.0, float64(m.rateLimiter.Limit()), 1e-9)
	assert.Equal(t, 100, m.rateLimiter.Burst())

	start := time.Now()
	require.True(t, m.rateLimiter.AllowN(start, 100))

	allowed := 0
	for i := 1; i <= 300; i++ {
		if m.rateLimiter.AllowN(start.Add(time.Duration(i)*10*time.Millisecond), 1) {
			allowed++
		}
	}
	assert.GreaterOrEqual(t, allowed, 295)
}

func TestMiddleware_CORS(t *testing.T) {
	t.Run("preflight", func(t *testing.T) {
		f := newServerFixture(testConfig())

		rec := f.do(http.MethodOptions, "/api/v1/dashboard")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted origins", func(t *testing.T) {
		m := NewMiddleware(10, time.Second, []string{"https://dash.example.com"})

		assert.Equal(t, "https://dash.example.com", m.allowOrigin("https://dash.example.com"))
		assert.Equal(t, "", m.allowOrigin("https://other.example.com"))
		assert.Equal(t, "", m.allowOrigin(""))
	})
}

func TestMiddleware_Recovery(t *testing.T) {
	f := newServerFixture(testConfig())
	f.dashboards.On("Charts", mock.Anything).Run(func(mock.Arguments) { panic("boom") })

	rec := f.do(http.MethodGet, "/api/v1/charts")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{entities.ValidationError{Field: "granularity", Reason: "bad"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", entities.ErrChartNotFound), http.StatusNotFound},
		{entities.ErrExportNotFound, http.StatusNotFound},
		{entities.ErrNoData, http.StatusUnprocessableEntity},
		{entities.ErrExportsDisabled, http.StatusServiceUnavailable},
		{entities.ErrDatasetNotLoaded, http.StatusServiceUnavailable},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, "#b40426", string(heatColor(1)))
	assert.Equal(t, "#3b4cc0", string(heatColor(-1)))
	assert.Equal(t, "#dddddd", string(heatColor(0)))
	assert.Equal(t, "#b40426", string(heatColor(3)))
	assert.Equal(t, "#f5f5f5", string(heatColor(math.NaN())))

	assert.Equal(t, "#ffffff", string(textColor(0.9)))
	assert.Equal(t, "#222222", string(textColor(0.1)))
}
