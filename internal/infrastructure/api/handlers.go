package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/ports"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

const dateLayout = "2006-01-02"

type HandlerOptions struct {
	Version        string
	BasePath       string
	ExportsEnabled bool
}

type APIHandler struct {
	dashboards ports.DashboardService
	exports    ports.ExportService
	datasets   ports.DatasetProvider
	opts       HandlerOptions
	logger     logger.Logger
}

func NewAPIHandler(dashboards ports.DashboardService, exports ports.ExportService, datasets ports.DatasetProvider, opts HandlerOptions) *APIHandler {
	return &APIHandler{
		dashboards: dashboards,
		exports:    exports,
		datasets:   datasets,
		opts:       opts,
		logger:     logger.Component("api_handler"),
	}
}

// HealthCheck godoc
// @Summary Health check endpoint
// @Description Reports the state of the dataset, the dashboard cache and the export backends
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *APIHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	healthStatus := HealthResponse{
		Status:  "healthy",
		Version: h.opts.Version,
		Time:    time.Now(),
		Services: map[string]string{
			"api": "healthy",
		},
	}

	checks := []struct {
		name  string
		check func() error
	}{
		{"dataset", func() error { return h.datasets.HealthCheck(ctx) }},
		{"dashboard", func() error { return h.dashboards.HealthCheck(ctx) }},
		{"exports", func() error { return h.exports.HealthCheck(ctx) }},
	}

	for _, sc := range checks {
		if err := sc.check(); err != nil {
			healthStatus.Status = "degraded"
			healthStatus.Services[sc.name] = fmt.Sprintf("unhealthy: %v", err)
			continue
		}
		healthStatus.Services[sc.name] = "healthy"
	}

	c.JSON(http.StatusOK, healthStatus)
}

// GetDataset godoc
// @Summary Dataset information
// @Description Version, date bounds and row counts of the loaded rental tables
// @Tags dataset
// @Produce json
// @Success 200 {object} entities.DatasetInfo
// @Failure 503 {object} ErrorResponse
// @Router /dataset [get]
func (h *APIHandler) GetDataset(c *gin.Context) {
	info, err := h.datasets.Info()
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// ReloadDataset godoc
// @Summary Reload the dataset
// @Description Reads the daily and hourly files again and invalidates cached dashboards
// @Tags dataset
// @Produce json
// @Success 200 {object} entities.DatasetInfo
// @Failure 500 {object} ErrorResponse
// @Router /dataset/reload [post]
func (h *APIHandler) ReloadDataset(c *gin.Context) {
	if err := h.datasets.Reload(c.Request.Context()); err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to reload dataset: %v", err))
		return
	}

	info, err := h.datasets.Info()
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetDashboard godoc
// @Summary Dashboard view
// @Description Correlation matrix, chart series, working-day distribution and optional preview for the filtered table
// @Tags dashboard
// @Produce json
// @Param granularity query string false "daily or hourly" default(daily)
// @Param user_type query string false "casual or registered" default(casual)
// @Param start query string false "Start date YYYY-MM-DD, defaults to the first day of the dataset"
// @Param end query string false "End date YYYY-MM-DD, defaults to the last day of the dataset"
// @Param preview query bool false "Include the first rows of the filtered table"
// @Success 200 {object} entities.DashboardView
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /dashboard [get]
func (h *APIHandler) GetDashboard(c *gin.Context) {
	query, err := h.parseQuery(c)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	data, err := h.dashboards.ViewJSON(c.Request.Context(), query)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// ListCharts godoc
// @Summary Chart catalog
// @Description Charts available for a granularity, or every chart when granularity is omitted
// @Tags charts
// @Produce json
// @Param granularity query string false "daily or hourly"
// @Success 200 {array} entities.ChartInfo
// @Failure 400 {object} ErrorResponse
// @Router /charts [get]
func (h *APIHandler) ListCharts(c *gin.Context) {
	var granularity entities.Granularity
	if raw := c.Query("granularity"); raw != "" {
		g, err := entities.ParseGranularity(raw)
		if err != nil {
			h.respondErr(c, err)
			return
		}
		granularity = g
	}

	c.JSON(http.StatusOK, h.dashboards.Charts(granularity))
}

// GetChart godoc
// @Summary Render one chart
// @Description Renders a catalog chart for the filtered table as SVG or PNG
// @Tags charts
// @Produce image/svg+xml
// @Produce image/png
// @Param name path string true "Chart name"
// @Param granularity query string false "daily or hourly" default(daily)
// @Param user_type query string false "casual or registered" default(casual)
// @Param start query string false "Start date YYYY-MM-DD"
// @Param end query string false "End date YYYY-MM-DD"
// @Success 200 {file} file Chart image
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /charts/{name} [get]
func (h *APIHandler) GetChart(c *gin.Context) {
	query, err := h.parseQuery(c)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	data, contentType, err := h.dashboards.RenderChart(c.Request.Context(), query, c.Param("name"))
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// CreateExport godoc
// @Summary Export the dashboard as an Excel workbook
// @Description Builds the workbook for the filtered table, stores it and returns its metadata
// @Tags exports
// @Produce json
// @Param granularity query string false "daily or hourly" default(daily)
// @Param user_type query string false "casual or registered" default(casual)
// @Param start query string false "Start date YYYY-MM-DD"
// @Param end query string false "End date YYYY-MM-DD"
// @Success 201 {object} ExportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /exports [post]
func (h *APIHandler) CreateExport(c *gin.Context) {
	query, err := h.parseQuery(c)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	export, err := h.exports.CreateExport(c.Request.Context(), query)
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, newExportResponse(export))
}

// GetExport godoc
// @Summary Export metadata
// @Tags exports
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} ExportResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /exports/{id} [get]
func (h *APIHandler) GetExport(c *gin.Context) {
	export, err := h.exports.GetExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, newExportResponse(export))
}

// DownloadExport godoc
// @Summary Download export by ID
// @Description Streams the Excel workbook of an export
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Export ID"
// @Success 200 {file} file Excel file
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /exports/{id}/download [get]
func (h *APIHandler) DownloadExport(c *gin.Context) {
	reader, fileName, err := h.exports.DownloadExport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Type", entities.ExcelContentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Errorf("Failed to stream export: %v", err)
	}
}

// parseQuery reads the dashboard filters from the query string. Missing
// dates default to the daily table bounds; supplied dates must lie inside
// them.
func (h *APIHandler) parseQuery(c *gin.Context) (entities.DashboardQuery, error) {
	info, err := h.datasets.Info()
	if err != nil {
		return entities.DashboardQuery{}, err
	}

	granularity, err := entities.ParseGranularity(c.DefaultQuery("granularity", string(entities.GranularityDaily)))
	if err != nil {
		return entities.DashboardQuery{}, err
	}
	userType, err := entities.ParseUserType(c.DefaultQuery("user_type", string(entities.UserTypeCasual)))
	if err != nil {
		return entities.DashboardQuery{}, err
	}

	minDate, err := time.Parse(dateLayout, info.MinDate)
	if err != nil {
		return entities.DashboardQuery{}, entities.ErrDatasetNotLoaded
	}
	maxDate, err := time.Parse(dateLayout, info.MaxDate)
	if err != nil {
		return entities.DashboardQuery{}, entities.ErrDatasetNotLoaded
	}

	start, err := parseDate(c.Query("start"), "start", minDate)
	if err != nil {
		return entities.DashboardQuery{}, err
	}
	end, err := parseDate(c.Query("end"), "end", maxDate)
	if err != nil {
		return entities.DashboardQuery{}, err
	}

	bounds := entities.DateRange{Start: minDate, End: maxDate}
	if !bounds.Contains(start) || !bounds.Contains(end) {
		return entities.DashboardQuery{}, entities.ValidationError{
			Field:  "date_range",
			Reason: fmt.Sprintf("dates must lie between %s and %s", info.MinDate, info.MaxDate),
		}
	}

	preview := false
	if raw := c.Query("preview"); raw != "" {
		preview, err = strconv.ParseBool(raw)
		if err != nil {
			return entities.DashboardQuery{}, entities.ValidationError{Field: "preview", Reason: "must be a boolean"}
		}
	}

	query := entities.DashboardQuery{
		Granularity: granularity,
		UserType:    userType,
		Start:       start,
		End:         end,
		Preview:     preview,
	}
	if err := query.Validate(); err != nil {
		return entities.DashboardQuery{}, err
	}
	return query, nil
}

func parseDate(raw, field string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, entities.ValidationError{Field: field, Reason: "invalid date format, use YYYY-MM-DD"}
	}
	return t, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var validationErr entities.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrChartNotFound), errors.Is(err, entities.ErrExportNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrExportsDisabled), errors.Is(err, entities.ErrDatasetNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) respondErr(c *gin.Context, err error) {
	h.respondError(c, statusFor(err), err.Error())
}

func (h *APIHandler) respondError(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("HTTP %d: %s", status, message)
	} else {
		h.logger.Debugf("HTTP %d: %s", status, message)
	}
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

type ExportResponse struct {
	ID             string     `json:"id"`
	Granularity    string     `json:"granularity"`
	UserType       string     `json:"user_type"`
	PeriodStart    time.Time  `json:"period_start"`
	PeriodEnd      time.Time  `json:"period_end"`
	Rows           int        `json:"rows"`
	FileName       string     `json:"file_name"`
	FileSize       int64      `json:"file_size"`
	Checksum       string     `json:"checksum"`
	DatasetVersion string     `json:"dataset_version"`
	DownloadURL    string     `json:"download_url,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

func newExportResponse(export entities.ExportReportEntity) ExportResponse {
	return ExportResponse{
		ID:             export.GetID(),
		Granularity:    string(export.GetGranularity()),
		UserType:       string(export.GetUserType()),
		PeriodStart:    export.GetPeriodStart(),
		PeriodEnd:      export.GetPeriodEnd(),
		Rows:           export.GetRows(),
		FileName:       export.GetFileName(),
		FileSize:       export.GetFileSize(),
		Checksum:       export.GetChecksum(),
		DatasetVersion: export.GetDatasetVersion(),
		DownloadURL:    export.GetDownloadURL(),
		GeneratedAt:    export.GetGeneratedAt(),
		ExpiresAt:      export.GetExpiresAt(),
	}
}

type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Time     time.Time         `json:"time"`
	Services map[string]string `json:"services"`
}
