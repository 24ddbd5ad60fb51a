package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

type ExportOptions struct {
	Retention time.Duration
	CacheTTL  time.Duration
	BasePath  string
}

// ExportService turns a dashboard view into a stored workbook.
type ExportService struct {
	dashboards ports.DashboardService
	excel      ports.ExcelGenerator
	storage    ports.ExportStorage
	repo       ports.ExportRepository
	publisher  ports.EventPublisher
	cache      ports.CacheService
	opts       ExportOptions
	now        func() time.Time
	logger     logger.Logger
}

func NewExportService(
	dashboards ports.DashboardService,
	excel ports.ExcelGenerator,
	storage ports.ExportStorage,
	repo ports.ExportRepository,
	publisher ports.EventPublisher,
	cache ports.CacheService,
	opts ExportOptions,
) *ExportService {
	return &ExportService{
		dashboards: dashboards,
		excel:      excel,
		storage:    storage,
		repo:       repo,
		publisher:  publisher,
		cache:      cache,
		opts:       opts,
		now:        time.Now,
		logger:     logger.Component("export_service"),
	}
}

// CreateExport builds the workbook for query, stores it and records its
// metadata. The preview sheet is always included.
func (s *ExportService) CreateExport(ctx context.Context, query entities.DashboardQuery) (entities.ExportReportEntity, error) {
	query.Preview = true
	view, err := s.dashboards.View(ctx, query)
	if err != nil {
		return nil, err
	}
	if view.Empty {
		return nil, entities.ErrNoData
	}

	data, err := s.excel.GenerateDashboardReport(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("failed to generate excel: %w", err)
	}

	export := s.newExport(view, data)

	storagePath, err := s.storage.UploadExport(ctx, export, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload export to storage: %w", err)
	}
	export.StoragePath = storagePath

	if err := s.repo.SaveExport(ctx, export); err != nil {
		if delErr := s.storage.DeleteExport(ctx, export); delErr != nil {
			s.logger.Warnf("Failed to remove orphaned export object %s: %v", storagePath, delErr)
		}
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	if err := s.cache.Put(ctx, ExportKey(export.ID), CacheTypeExport, data, entities.ExcelContentType, export.FileName, s.opts.CacheTTL); err != nil {
		s.logger.Warnf("Failed to cache export %s: %v", export.ID, err)
	}

	event := entities.ExportEvent{
		Type:        entities.ExportEventCreated,
		ExportID:    export.ID,
		FileName:    export.FileName,
		Granularity: export.Granularity,
		UserType:    export.UserType,
		PeriodStart: export.PeriodStart,
		PeriodEnd:   export.PeriodEnd,
		Rows:        export.Rows,
		OccurredAt:  export.GeneratedAt,
	}
	if err := s.publisher.PublishExport(ctx, event); err != nil {
		s.logger.Warnf("Failed to publish export event for %s: %v", export.ID, err)
	}

	s.logger.Infof("Created export %s (%s, %d bytes)", export.ID, export.FileName, export.FileSize)
	return export, nil
}

func (s *ExportService) newExport(view *entities.DashboardView, data []byte) *entities.ExportReport {
	id := uuid.New().String()
	generatedAt := s.now().UTC()
	checksum := sha256.Sum256(data)

	export := &entities.ExportReport{
		ID:             id,
		Granularity:    view.Query.Granularity,
		UserType:       view.Query.UserType,
		PeriodStart:    entities.DateOnly(view.Query.Start),
		PeriodEnd:      entities.DateOnly(view.Query.End),
		Rows:           view.Rows,
		FileName:       ExportFileName(view.Query),
		FileSize:       int64(len(data)),
		DownloadURL:    fmt.Sprintf("%s/exports/%s/download", strings.TrimSuffix(s.opts.BasePath, "/"), id),
		Checksum:       hex.EncodeToString(checksum[:]),
		DatasetVersion: view.DatasetVersion,
		GeneratedAt:    generatedAt,
	}
	if s.opts.Retention > 0 {
		expiresAt := generatedAt.Add(s.opts.Retention)
		export.ExpiresAt = &expiresAt
	}
	return export
}

// GetExport returns ErrExportNotFound for unknown and expired exports.
func (s *ExportService) GetExport(ctx context.Context, id string) (entities.ExportReportEntity, error) {
	export, err := s.repo.FindExportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}
	if export == nil || export.IsExpired() {
		return nil, fmt.Errorf("%w: %s", entities.ErrExportNotFound, id)
	}
	return export, nil
}

func (s *ExportService) DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error) {
	if entry, err := s.cache.Get(ctx, ExportKey(id)); err == nil && entry != nil {
		s.logger.Debugf("Serving export %s from cache", id)
		return io.NopCloser(bytes.NewReader(entry.GetData())), entry.GetFileName(), nil
	}

	export, err := s.GetExport(ctx, id)
	if err != nil {
		return nil, "", err
	}

	reader, err := s.storage.DownloadExport(ctx, export)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download export: %w", err)
	}

	return reader, export.GetFileName(), nil
}

// CleanupExpiredExports removes expired workbooks and their metadata. An
// export whose object could not be deleted keeps its metadata so the next
// run retries it.
func (s *ExportService) CleanupExpiredExports(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredExports(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired exports: %w", err)
	}

	removed := 0
	var errs []error
	for _, export := range expired {
		if err := s.storage.DeleteExport(ctx, export); err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", export.GetID(), err))
			continue
		}
		if err := s.repo.DeleteExport(ctx, export.GetID()); err != nil {
			errs = append(errs, fmt.Errorf("export %s: %w", export.GetID(), err))
			continue
		}
		removed++
	}

	s.logger.Infof("Removed %d of %d expired exports", removed, len(expired))
	return removed, errors.Join(errs...)
}

func (s *ExportService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("export repository health check failed: %w", err)
	}
	if err := s.storage.HealthCheck(ctx); err != nil {
		return fmt.Errorf("export storage health check failed: %w", err)
	}
	return nil
}

// ExportFileName names the workbook after the query.
func ExportFileName(query entities.DashboardQuery) string {
	return fmt.Sprintf("bike_rentals_%s_%s_%s_%s.xlsx",
		query.Granularity,
		query.UserType,
		query.Start.Format("20060102"),
		query.End.Format("20060102"),
	)
}

// DisabledExportService answers every call with ErrExportsDisabled. It is
// used when PostgreSQL or MinIO is not configured.
type DisabledExportService struct{}

func (DisabledExportService) CreateExport(ctx context.Context, query entities.DashboardQuery) (entities.ExportReportEntity, error) {
	return nil, entities.ErrExportsDisabled
}

func (DisabledExportService) GetExport(ctx context.Context, id string) (entities.ExportReportEntity, error) {
	return nil, entities.ErrExportsDisabled
}

func (DisabledExportService) DownloadExport(ctx context.Context, id string) (io.ReadCloser, string, error) {
	return nil, "", entities.ErrExportsDisabled
}

func (DisabledExportService) CleanupExpiredExports(ctx context.Context) (int, error) {
	return 0, nil
}

func (DisabledExportService) HealthCheck(ctx context.Context) error {
	return nil
}
