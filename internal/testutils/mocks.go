package testutils

import (
	"context"
	"io"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/stretchr/testify/mock"
)

type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) (*entities.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dataset), args.Error(1)
}

type MockDatasetProvider struct {
	mock.Mock
}

func (m *MockDatasetProvider) Current() (*entities.Dataset, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dataset), args.Error(1)
}

func (m *MockDatasetProvider) Info() (entities.DatasetInfo, error) {
	args := m.Called()
	return args.Get(0).(entities.DatasetInfo), args.Error(1)
}

func (m *MockDatasetProvider) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDatasetProvider) HandleEvent(ctx context.Context, event entities.DatasetEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDatasetProvider) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (entities.APICacheEntity, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.APICacheEntity), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, data entities.APICacheEntity, ttl time.Duration) error {
	args := m.Called(ctx, key, data, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockCache) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Get(ctx context.Context, key string) (entities.APICacheEntity, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.APICacheEntity), args.Error(1)
}

func (m *MockCacheService) Put(ctx context.Context, key, cacheType string, data []byte, contentType, fileName string, ttl time.Duration) error {
	args := m.Called(ctx, key, cacheType, data, contentType, fileName, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDataset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockChartRenderer struct {
	mock.Mock
}

func (m *MockChartRenderer) Render(w io.Writer, chart entities.ChartData, distribution []entities.DistributionSummary) error {
	args := m.Called(w, chart, distribution)
	if len(args) > 1 && args.Error(0) == nil {
		if payload, ok := args.Get(1).([]byte); ok {
			_, _ = w.Write(payload)
		}
	}
	return args.Error(0)
}

func (m *MockChartRenderer) ContentType() string {
	args := m.Called()
	return args.String(0)
}

type MockExcelGenerator struct {
	mock.Mock
}

func (m *MockExcelGenerator) GenerateDashboardReport(ctx context.Context, view *entities.DashboardView) ([]byte, error) {
	args := m.Called(ctx, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockExportStorage struct {
	mock.Mock
}

func (m *MockExportStorage) UploadExport(ctx context.Context, export entities.ExportReportEntity, data io.Reader) (string, error) {
	args := m.Called(ctx, export, data)
	return args.String(0), args.Error(1)
}

func (m *MockExportStorage) DownloadExport(ctx context.Context, export entities.ExportReportEntity) (io.ReadCloser, error) {
	args := m.Called(ctx, export)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockExportStorage) DeleteExport(ctx context.Context, export entities.ExportReportEntity) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *MockExportStorage) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) SaveExport(ctx context.Context, export entities.ExportReportEntity) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *MockExportRepository) FindExportByID(ctx context.Context, id string) (entities.ExportReportEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ExportReportEntity), args.Error(1)
}

func (m *MockExportRepository) FindExpiredExports(ctx context.Context) ([]entities.ExportReportEntity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ExportReportEntity), args.Error(1)
}

func (m *MockExportRepository) DeleteExport(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExportRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockExportRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishExport(ctx context.Context, event entities.ExportEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockConsumer struct {
	mock.Mock
}

func (m *MockConsumer) Consume(ctx context.Context, handler ports.DatasetEventHandler) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *MockConsumer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockConsumer) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	args := m.Called(ctx, name, interval, task)
	return args.Error(0)
}

func (m *MockScheduler) Stop() {
	m.Called()
}

func (m *MockScheduler) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) View(ctx context.Context, query entities.DashboardQuery) (*entities.DashboardView, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DashboardView), args.Error(1)
}

func (m *MockDashboardService) ViewJSON(ctx context.Context, query entities.DashboardQuery) ([]byte, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDashboardService) RenderChart(ctx context.Context, query entities.DashboardQuery, name string) ([]byte, string, error) {
	args := m.Called(ctx, query, name)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockDashboardService) Charts(granularity entities.Granularity) []entities.ChartInfo {
	args := m.Called(granularity)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]entities.ChartInfo)
}

func (m *MockDashboardService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) CreateExport(ctx context.Context, query entities.DashboardQuery) (entities.ExportReportEntity, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ExportReportEntity), args.Error(1)
}

func (m *MockExportService) GetExport(ctx context.Context, id string) (entities.ExportReportEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.ExportReportEntity), args.Error(1)
}

func (m *MockExportService) DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockExportService) CleanupExpiredExports(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockExportService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
