package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	"github.com/robfig/cron/v3"
)

const minInterval = 10 * time.Second

type CronScheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	timeout time.Duration
	mu      sync.RWMutex
	logger  logger.Logger
}

func NewCronScheduler(timeout time.Duration) *CronScheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	c := cron.New(cron.WithSeconds())
	scheduler := &CronScheduler{
		cron:    c,
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
		logger:  logger.Component("cron_scheduler"),
	}

	c.Start()
	scheduler.logger.Info("Cron scheduler started")

	return scheduler
}

// Schedule registers a named job. Runs are skipped once ctx is done and each
// run gets a context bounded by the scheduler timeout.
func (c *CronScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.jobs[name]; exists {
		return fmt.Errorf("job with name '%s' already exists", name)
	}

	cronExpr := intervalToCron(interval)
	c.logger.Infof("Scheduling job '%s' with interval %v (cron: %s)", name, interval, cronExpr)

	entryID, err := c.cron.AddFunc(cronExpr, func() {
		c.runTask(ctx, name, task)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job '%s': %w", name, err)
	}

	c.jobs[name] = entryID
	return nil
}

func (c *CronScheduler) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entryID, ok := c.jobs[name]
	if !ok {
		return false
	}
	c.cron.Remove(entryID)
	delete(c.jobs, name)
	c.logger.Infof("Job '%s' removed", name)
	return true
}

// Jobs returns the names of the registered jobs with their next run time.
func (c *CronScheduler) Jobs() map[string]time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	jobs := make(map[string]time.Time, len(c.jobs))
	for name, id := range c.jobs {
		jobs[name] = c.cron.Entry(id).Next
	}
	return jobs
}

func (c *CronScheduler) runTask(parent context.Context, name string, task ports.Task) {
	if parent.Err() != nil {
		c.logger.Debugf("Skipping job '%s': context done", name)
		return
	}

	startTime := time.Now()
	c.logger.Infof("Starting scheduled job: %s", name)

	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	if err := task(ctx); err != nil {
		c.logger.Errorf("Job '%s' failed after %v: %v", name, time.Since(startTime), err)
		return
	}

	c.logger.Infof("Job '%s' completed in %v", name, time.Since(startTime))
}

func (c *CronScheduler) Stop() {
	c.logger.Info("Stopping cron scheduler...")
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.cron.Stop()
	<-ctx.Done()

	c.jobs = make(map[string]cron.EntryID)
	c.logger.Info("Cron scheduler stopped")
}

func (c *CronScheduler) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, entryID := range c.jobs {
		if entry := c.cron.Entry(entryID); entry.ID != entryID {
			return fmt.Errorf("job '%s' not found in cron", name)
		}
	}

	return nil
}

// intervalToCron turns an interval into a six-field cron expression when it
// divides its parent unit evenly and falls back to @every otherwise.
func intervalToCron(interval time.Duration) string {
	if interval <= 0 {
		return "@every 1m"
	}
	if interval < minInterval {
		interval = minInterval
	}

	switch {
	case interval < time.Minute && interval%time.Second == 0 && 60%int(interval.Seconds()) == 0:
		return fmt.Sprintf("*/%d * * * * *", int(interval.Seconds()))
	case interval < time.Hour && interval%time.Minute == 0 && 60%int(interval.Minutes()) == 0:
		return fmt.Sprintf("0 */%d * * * *", int(interval.Minutes()))
	case interval == time.Hour:
		return "0 0 * * * *"
	case interval < 24*time.Hour && interval%time.Hour == 0 && 24%int(interval.Hours()) == 0:
		return fmt.Sprintf("0 0 */%d * * *", int(interval.Hours()))
	case interval == 24*time.Hour:
		return "0 0 0 * * *"
	}
	return "@every " + interval.String()
}
