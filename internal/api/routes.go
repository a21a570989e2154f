package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/nature-translator/domain/entities"
	"github.com/satriahrh/nature-translator/internal/config"
	"github.com/satriahrh/nature-translator/internal/metrics"
)

// Upload outcomes, as reported in metrics
const (
	uploadOK       = "ok"
	uploadRejected = "rejected"
	uploadFailed   = "failed"
)

// UploadAnalyzer classifies an uploaded recording
type UploadAnalyzer interface {
	AnalyzeUpload(ctx context.Context) (entities.Classification, error)
}

// Dependencies holds everything the routes need
type Dependencies struct {
	Config   *config.Config
	Analyzer UploadAnalyzer
	Stream   echo.HandlerFunc
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies) {
	cfg := deps.Config
	logger := deps.Logger

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: cfg.Server.Name,
		})
	})

	// Streaming endpoint
	e.GET(cfg.WebSocket.Path, deps.Stream)

	// One-shot upload endpoint
	e.POST(cfg.Upload.Path, func(c echo.Context) error {
		return analyzeUpload(c, deps.Analyzer, cfg.Upload.FormField, deps.Metrics, logger)
	}, middleware.BodyLimit(cfg.Upload.BodyLimit))

	if cfg.Metrics.Enabled {
		gatherer := deps.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// analyzeUpload classifies a multipart upload. The file must be present but
// its contents are never read.
func analyzeUpload(c echo.Context, analyzer UploadAnalyzer, field string, m *metrics.Metrics, logger *zap.Logger) error {
	file, err := c.FormFile(field)
	if err != nil {
		m.UploadsTotal.WithLabelValues(uploadRejected).Inc()
		logger.Warn("Upload rejected: missing file",
			zap.String("field", field),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_file",
			Message: "A file is required in form field \"" + field + "\"",
		})
	}

	result, err := analyzer.AnalyzeUpload(c.Request().Context())
	if err != nil {
		m.UploadsTotal.WithLabelValues(uploadFailed).Inc()
		logger.Error("Failed to analyze upload",
			zap.String("filename", file.Filename),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "analysis_failed",
			Message: "Failed to analyze audio",
		})
	}

	m.UploadsTotal.WithLabelValues(uploadOK).Inc()
	logger.Info("Upload analyzed",
		zap.String("filename", file.Filename),
		zap.Int64("size", file.Size),
		zap.String("animal", result.Animal))

	return c.JSON(http.StatusOK, result)
}
