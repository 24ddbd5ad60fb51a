package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/k-shtanenko/bike-rental-dashboard/internal/analytics"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/application"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/config"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/api"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/cache"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/chart"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/database"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/dataset"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/excel"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/messaging"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/scheduler"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/infrastructure/storage"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

type App struct {
	config *config.Config
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	cache          ports.Cache
	cacheService   *application.CacheService
	datasets       *application.DatasetService
	dashboards     *application.DashboardService
	exports        ports.ExportService
	exportRepo     ports.ExportRepository
	publisher      ports.EventPublisher
	consumer       ports.Consumer
	scheduler      ports.Scheduler
	apiServer      ports.APIServer
	startupChecker *HealthChecker
}

func Bootstrap() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Configure(cfg.App.LogLevel, cfg.App.Env)
	appLogger := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)
	appLogger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		config: cfg,
		logger: appLogger,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initComponents(); err != nil {
		appLogger.Fatalf("Failed to initialize components: %v", err)
	}

	if err := app.start(); err != nil {
		appLogger.Fatalf("Failed to start application: %v", err)
	}

	app.waitForShutdown()
}

func (a *App) initComponents() error {
	a.logger.Info("Initializing components...")

	a.startupChecker = NewHealthChecker(
		a.config.HealthCheck.Timeout,
		a.config.HealthCheck.RetryInterval,
		a.config.HealthCheck.MaxRetries,
	)

	if err := a.initCache(); err != nil {
		return err
	}

	a.logger.Info("Initializing dataset loader...")
	loader := dataset.NewCSVLoader(a.config.Dataset.DailyPath, a.config.Dataset.HourlyPath, a.config.Dataset.DateLayout)
	a.datasets = application.NewDatasetService(loader, a.cacheService)

	a.logger.Info("Initializing dashboard...")
	catalog, err := a.loadCatalog()
	if err != nil {
		return err
	}
	renderer, err := chart.NewRenderer(chart.Format(a.config.Dashboard.ChartFormat), a.config.Dashboard.ChartWidth, a.config.Dashboard.ChartHeight)
	if err != nil {
		return fmt.Errorf("failed to create chart renderer: %w", err)
	}
	a.dashboards = application.NewDashboardService(
		a.datasets,
		analytics.NewDashboard(catalog, a.config.Dashboard.PreviewRows),
		renderer,
		a.cacheService,
		a.config.Dashboard.CacheTTL,
	)

	if err := a.initMessaging(); err != nil {
		return err
	}

	if err := a.initExports(); err != nil {
		return err
	}

	a.logger.Info("Initializing scheduler...")
	a.scheduler = scheduler.NewCronScheduler(a.config.Scheduler.Timeout)

	a.logger.Info("Initializing API server...")
	apiMiddleware := api.NewMiddleware(a.config.API.RateLimit, a.config.API.RateLimitWindow, a.config.API.CorsAllowedOrigins)
	a.apiServer = api.NewAPIServer(a.dashboards, a.exports, a.datasets, apiMiddleware, a.config)

	a.logger.Info("All components initialized successfully")
	return nil
}

func (a *App) initCache() error {
	if !a.config.Redis.Enabled {
		a.logger.Info("Redis disabled, dashboard responses are not cached")
		a.cache = cache.NewNopCache()
		a.cacheService = application.NewCacheService(a.cache, a.config.Dashboard.CacheTTL)
		return nil
	}

	a.logger.Info("Initializing Redis cache...")
	redisCache, err := cache.NewRedisCache(cache.RedisOptions{
		Host:     a.config.Redis.Host,
		Port:     a.config.Redis.Port,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
		PoolSize: a.config.Redis.PoolSize,
		Timeout:  a.config.Redis.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	a.cache = redisCache
	a.cacheService = application.NewCacheService(redisCache, a.config.Dashboard.CacheTTL)
	a.startupChecker.Add("Redis", redisCache.HealthCheck)
	return nil
}

func (a *App) loadCatalog() (*analytics.Catalog, error) {
	if a.config.Dashboard.CatalogPath == "" {
		catalog, err := analytics.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in chart catalog: %w", err)
		}
		return catalog, nil
	}

	a.logger.Infof("Loading chart catalog from %s", a.config.Dashboard.CatalogPath)
	catalog, err := analytics.LoadCatalog(a.config.Dashboard.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart catalog: %w", err)
	}
	return catalog, nil
}

func (a *App) initMessaging() error {
	if !a.config.Kafka.Enabled {
		a.logger.Info("Kafka disabled, dataset refresh events are not consumed")
		a.publisher = messaging.NewNopPublisher()
		return nil
	}

	a.logger.Info("Initializing Kafka producer...")
	producer, err := messaging.NewKafkaProducer(
		a.config.Kafka.Broker,
		a.config.Kafka.EventsTopic,
		a.config.Kafka.RequiredAcks,
		a.config.Kafka.MaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	a.publisher = producer

	a.logger.Info("Initializing Kafka consumer...")
	consumer, err := messaging.NewKafkaConsumer(
		a.config.Kafka.Broker,
		a.config.Kafka.DatasetTopic,
		a.config.Kafka.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	a.consumer = consumer
	a.startupChecker.Add("Kafka", consumer.HealthCheck)
	return nil
}

func (a *App) initExports() error {
	if !a.config.ExportsEnabled() {
		a.logger.Info("PostgreSQL or Minio disabled, workbook exports are unavailable")
		a.exports = application.DisabledExportService{}
		return nil
	}

	a.logger.Info("Initializing PostgreSQL export repository...")
	ctx, cancel := context.WithTimeout(a.ctx, a.config.Postgres.ConnectionTimeout)
	defer cancel()

	repo, err := database.NewPostgresExportRepository(ctx, database.PostgresOptions{
		Host:              a.config.Postgres.Host,
		Port:              a.config.Postgres.Port,
		User:              a.config.Postgres.User,
		Password:          a.config.Postgres.Password,
		Database:          a.config.Postgres.Database,
		SSLMode:           a.config.Postgres.SSLMode,
		MaxConnections:    a.config.Postgres.MaxConnections,
		ConnectionTimeout: a.config.Postgres.ConnectionTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create export repository: %w", err)
	}
	a.exportRepo = repo
	a.startupChecker.Add("PostgreSQL", repo.HealthCheck)

	a.logger.Info("Initializing Minio storage...")
	minioStorage, err := storage.NewMinioStorage(
		a.config.Minio.Endpoint,
		a.config.Minio.AccessKey,
		a.config.Minio.SecretKey,
		a.config.Minio.UseSSL,
		a.config.Minio.Timeout,
	)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx, a.config.Minio.Bucket); err != nil {
		return fmt.Errorf("failed to prepare export bucket: %w", err)
	}
	exportStorage := storage.NewMinioExportStorage(minioStorage, a.config.Minio.Bucket)
	a.startupChecker.Add("Minio", exportStorage.HealthCheck)

	a.logger.Info("Initializing Excel generator...")
	excelGen := excel.NewExcelGenerator()

	a.exports = application.NewExportService(
		a.dashboards,
		excelGen,
		exportStorage,
		repo,
		a.publisher,
		a.cacheService,
		application.ExportOptions{
			Retention: time.Duration(a.config.Exports.RetentionDays) * 24 * time.Hour,
			CacheTTL:  a.config.Exports.CacheTTL,
			BasePath:  a.config.API.BasePath,
		},
	)
	return nil
}

func (a *App) start() error {
	a.logger.Info("Starting application...")

	a.logger.Info("Performing initial health checks...")
	if err := a.startupChecker.CheckAll(a.ctx); err != nil {
		return fmt.Errorf("initial health checks failed: %w", err)
	}

	if err := a.datasets.Reload(a.ctx); err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if a.consumer != nil {
		a.logger.Info("Starting Kafka consumer...")
		if err := a.consumer.Consume(a.ctx, a.datasets.HandleEvent); err != nil {
			return fmt.Errorf("failed to start Kafka consumer: %w", err)
		}
	}

	a.logger.Info("Setting up scheduler...")
	if err := a.setupScheduler(a.ctx); err != nil {
		return fmt.Errorf("failed to setup scheduler: %w", err)
	}

	a.logger.Info("Starting API server...")
	if err := a.apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	go func() {
		select {
		case <-a.ctx.Done():
			return
		case <-time.After(a.config.HealthCheck.StartupDelay):
		}
		a.runHealthChecks(a.ctx)
	}()

	a.logger.Info("Application started successfully")
	return nil
}

func (a *App) setupScheduler(ctx context.Context) error {
	if interval := a.config.Dataset.ReloadInterval; interval > 0 {
		if err := a.scheduler.Schedule(ctx, "dataset_reload", interval,
			func(ctx context.Context) error {
				a.logger.Info("Running scheduled dataset reload")
				return a.datasets.Reload(ctx)
			}); err != nil {
			return fmt.Errorf("failed to schedule dataset reload: %w", err)
		}
	}

	if err := a.scheduler.Schedule(ctx, "export_cleanup",
		a.config.Scheduler.CleanupInterval,
		func(ctx context.Context) error {
			a.logger.Info("Running scheduled export cleanup")

			removed, err := a.exports.CleanupExpiredExports(ctx)
			if err != nil {
				a.logger.Errorf("Failed to cleanup expired exports: %v", err)
			}

			a.logger.Infof("Export cleanup completed, %d exports removed", removed)
			return err
		}); err != nil {
		return fmt.Errorf("failed to schedule export cleanup: %w", err)
	}

	return nil
}

func (a *App) runHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(a.config.HealthCheck.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.performHealthChecks(ctx)
		}
	}
}

func (a *App) performHealthChecks(ctx context.Context) {
	a.logger.Debug("Running health checks...")

	checks := []struct {
		name  string
		check func(context.Context) error
	}{
		{"dataset_service", a.datasets.HealthCheck},
		{"dashboard_service", a.dashboards.HealthCheck},
		{"cache_service", a.cacheService.HealthCheck},
		{"export_service", a.exports.HealthCheck},
		{"event_publisher", a.publisher.HealthCheck},
		{"scheduler", a.scheduler.HealthCheck},
	}
	if a.consumer != nil {
		checks = append(checks, struct {
			name  string
			check func(context.Context) error
		}{"kafka_consumer", a.consumer.HealthCheck})
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, a.config.HealthCheck.Timeout)
		if err := check.check(checkCtx); err != nil {
			a.logger.Errorf("Health check failed for %s: %v", check.name, err)
		} else {
			a.logger.Debugf("Health check passed for %s", check.name)
		}
		cancel()
	}
}

func (a *App) waitForShutdown() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	a.logger.Infof("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.App.ShutdownTimeout)
	defer cancel()

	a.shutdownComponents(ctx)

	a.logger.Info("Application shutdown completed")
}

func (a *App) shutdownComponents(ctx context.Context) {
	a.cancel()

	if a.apiServer != nil {
		a.logger.Info("Stopping API server...")
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Errorf("Failed to stop API server: %v", err)
		}
	}

	if a.scheduler != nil {
		a.logger.Info("Stopping scheduler...")
		a.scheduler.Stop()
	}

	if a.consumer != nil {
		a.logger.Info("Stopping Kafka consumer...")
		if err := a.consumer.Close(); err != nil {
			a.logger.Errorf("Failed to close Kafka consumer: %v", err)
		}
	}

	if a.publisher != nil {
		a.logger.Info("Closing event publisher...")
		if err := a.publisher.Close(); err != nil {
			a.logger.Errorf("Failed to close event publisher: %v", err)
		}
	}

	if a.exportRepo != nil {
		a.logger.Info("Closing export repository...")
		if err := a.exportRepo.Close(); err != nil {
			a.logger.Errorf("Failed to close export repository: %v", err)
		}
	}

	if a.cache != nil {
		a.logger.Info("Closing cache...")
		if err := a.cache.Close(); err != nil {
			a.logger.Errorf("Failed to close cache: %v", err)
		}
	}
}
