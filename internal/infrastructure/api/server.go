package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/k-shtanenko/bike-rental-dashboard/docs"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/config"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const Version = "1.0.0"

type APIServer struct {
	server     *http.Server
	router     *gin.Engine
	handler    *APIHandler
	middleware *Middleware
	config     *config.Config
	logger     logger.Logger
}

func NewAPIServer(
	dashboards ports.DashboardService,
	exports ports.ExportService,
	datasets ports.DatasetProvider,
	middleware *Middleware,
	cfg *config.Config,
) *APIServer {
	gin.SetMode(gin.ReleaseMode)
	if cfg.App.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates())

	handler := NewAPIHandler(dashboards, exports, datasets, HandlerOptions{
		Version:        Version,
		BasePath:       cfg.API.BasePath,
		ExportsEnabled: cfg.ExportsEnabled(),
	})

	s := &APIServer{
		router:     router,
		handler:    handler,
		middleware: middleware,
		config:     cfg,
		logger:     logger.Component("api_server"),
	}
	s.setupRoutes()

	return s
}

// Handler exposes the router for tests.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

func (s *APIServer) setupRoutes() {
	s.router.Use(s.middleware.Recovery())
	s.router.Use(s.middleware.Logging())
	s.router.Use(s.middleware.CORS())

	s.router.GET("/", s.middleware.Cache(0), s.handler.Dashboard)

	api := s.router.Group(s.config.API.BasePath)

	api.Use(s.middleware.RateLimit())
	api.Use(s.middleware.Cache(s.config.Dashboard.CacheTTL))

	api.GET("/health", s.handler.HealthCheck)

	dataset := api.Group("/dataset")
	{
		dataset.GET("", s.handler.GetDataset)
		dataset.POST("/reload", s.handler.ReloadDataset)
	}

	api.GET("/dashboard", s.handler.GetDashboard)

	charts := api.Group("/charts")
	{
		charts.GET("", s.handler.ListCharts)
		charts.GET("/:name", s.handler.GetChart)
	}

	exports := api.Group("/exports")
	{
		exports.POST("", s.handler.CreateExport)
		exports.GET("/:id", s.handler.GetExport)
		exports.GET("/:id/download", s.handler.DownloadExport)
	}

	if s.config.API.EnableSwagger {
		url := ginSwagger.URL("/swagger/doc.json")
		s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))
		s.logger.Info("Swagger documentation enabled at /swagger/index.html")
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": fmt.Sprintf("Route %s not found", c.Request.URL.Path),
		})
	})
}

func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.App.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Infof("Starting API server on port %d", s.config.App.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	return nil
}

func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.App.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	s.logger.Info("API server stopped")
	return nil
}
