package messaging

import (
	"context"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

// NopPublisher stands in for Kafka when it is disabled and only logs.
type NopPublisher struct {
	logger logger.Logger
}

func NewNopPublisher() *NopPublisher {
	return &NopPublisher{logger: logger.Component("nop_publisher")}
}

func (p *NopPublisher) PublishExport(ctx context.Context, event entities.ExportEvent) error {
	p.logger.Debugf("Kafka disabled, dropping %s event for export %s", event.Type, event.ExportID)
	return nil
}

func (p *NopPublisher) HealthCheck(ctx context.Context) error { return nil }

func (p *NopPublisher) Close() error { return nil }
