package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

type healthCheckFunc func(ctx context.Context) error

type dependency struct {
	name  string
	check healthCheckFunc
}

// HealthChecker verifies that enabled backends answer before the service
// starts serving.
type HealthChecker struct {
	dependencies  []dependency
	timeout       time.Duration
	retryInterval time.Duration
	maxRetries    int
	logger        logger.Logger
}

func NewHealthChecker(timeout, retryInterval time.Duration, maxRetries int) *HealthChecker {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &HealthChecker{
		timeout:       timeout,
		retryInterval: retryInterval,
		maxRetries:    maxRetries,
		logger:        logger.Component("health_checker"),
	}
}

func (h *HealthChecker) Add(name string, check healthCheckFunc) {
	h.dependencies = append(h.dependencies, dependency{name: name, check: check})
}

func (h *HealthChecker) CheckAll(ctx context.Context) error {
	h.logger.Info("Starting health checks for all dependencies")

	for _, dep := range h.dependencies {
		if err := h.checkWithRetry(ctx, dep.check, dep.name); err != nil {
			return fmt.Errorf("%s health check failed: %w", dep.name, err)
		}
	}

	h.logger.Info("All health checks passed successfully")
	return nil
}

func (h *HealthChecker) checkWithRetry(ctx context.Context, checkFunc healthCheckFunc, serviceName string) error {
	var lastErr error

	for i := 0; i < h.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		h.logger.Debugf("Checking %s (attempt %d/%d)", serviceName, i+1, h.maxRetries)

		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := checkFunc(checkCtx)
		cancel()

		if err == nil {
			h.logger.Infof("%s health check passed", serviceName)
			return nil
		}

		lastErr = err
		h.logger.Warnf("%s health check failed (attempt %d/%d): %v", serviceName, i+1, h.maxRetries, err)

		if i < h.maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryInterval):
			}
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", h.maxRetries, lastErr)
}
