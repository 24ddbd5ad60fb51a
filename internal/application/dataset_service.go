package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

// DatasetService owns the current dataset snapshot. Readers get the snapshot
// pointer; a reload builds a new one and swaps it in.
type DatasetService struct {
	loader ports.DatasetLoader
	cache  ports.CacheService

	mu      sync.RWMutex
	current *entities.Dataset

	reloadMu sync.Mutex
	logger   logger.Logger
}

func NewDatasetService(loader ports.DatasetLoader, cache ports.CacheService) *DatasetService {
	return &DatasetService{
		loader: loader,
		cache:  cache,
		logger: logger.Component("dataset_service"),
	}
}

func (s *DatasetService) Current() (*entities.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, entities.ErrDatasetNotLoaded
	}
	return s.current, nil
}

func (s *DatasetService) Info() (entities.DatasetInfo, error) {
	ds, err := s.Current()
	if err != nil {
		return entities.DatasetInfo{}, err
	}

	info := entities.DatasetInfo{
		Version:  ds.Version,
		LoadedAt: ds.LoadedAt,
	}
	if ds.Daily != nil {
		info.DailyRows = ds.Daily.Len()
	}
	if ds.Hourly != nil {
		info.HourlyRows = ds.Hourly.Len()
	}
	if bounds, ok := ds.Bounds(); ok {
		info.MinDate = bounds.Start.Format("2006-01-02")
		info.MaxDate = bounds.End.Format("2006-01-02")
	}
	return info, nil
}

// Reload reads the input files again. On failure the previous snapshot stays
// in place.
func (s *DatasetService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.logger.Info("Loading dataset...")
	ds, err := s.loader.Load(ctx)
	if err != nil {
		if _, currentErr := s.Current(); currentErr == nil {
			s.logger.Warnf("Dataset reload failed, keeping previous snapshot: %v", err)
		}
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if ds == nil || ds.Daily == nil || ds.Hourly == nil {
		return fmt.Errorf("failed to load dataset: loader returned incomplete dataset")
	}

	s.mu.Lock()
	previous := s.current
	s.current = ds
	s.mu.Unlock()

	s.logger.Infof("Dataset %s loaded: %d daily rows, %d hourly rows", ds.Version, ds.Daily.Len(), ds.Hourly.Len())

	if previous != nil && s.cache != nil {
		if err := s.cache.InvalidateDataset(ctx); err != nil {
			s.logger.Warnf("Failed to invalidate cache after reload: %v", err)
		}
	}
	return nil
}

func (s *DatasetService) HandleEvent(ctx context.Context, event entities.DatasetEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid dataset event: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"type":   event.Type,
		"source": event.Source,
		"reason": event.Reason,
	}).Info("Received dataset event")

	return s.Reload(ctx)
}

func (s *DatasetService) HealthCheck(ctx context.Context) error {
	ds, err := s.Current()
	if err != nil {
		return err
	}
	if ds.Daily.Empty() {
		return fmt.Errorf("daily table is empty")
	}
	return nil
}
