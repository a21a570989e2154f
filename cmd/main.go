package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/nature-translator/adapters/classifier"
	"github.com/satriahrh/nature-translator/domain/entities"
	"github.com/satriahrh/nature-translator/internal/api"
	"github.com/satriahrh/nature-translator/internal/config"
	"github.com/satriahrh/nature-translator/internal/metrics"
	"github.com/satriahrh/nature-translator/internal/websocket"
	"github.com/satriahrh/nature-translator/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize adapters
	catalog := entities.DefaultCatalog()
	soundClassifier := classifier.NewRandomClassifier(catalog, logger)

	// Initialize usecase services
	analysisService := usecase.NewAnalysisService(soundClassifier, m, logger)

	// Initialize WebSocket handler
	wsHandler := websocket.NewHandler(analysisService, websocket.Options{
		WriteWait:      cfg.WebSocket.WriteWait,
		PongWait:       cfg.WebSocket.PongWait,
		PingPeriod:     cfg.WebSocket.PingPeriod(),
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
		SendBuffer:     cfg.WebSocket.SendBuffer,
	}, m, logger)

	// Initialize API routes
	e := api.NewEcho(cfg, logger)
	api.InitRoutes(e, api.Dependencies{
		Config:   cfg,
		Analyzer: analysisService,
		Stream:   wsHandler.HandleWebSocket,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Server.Address()),
		zap.String("websocket", cfg.WebSocket.Path),
		zap.String("upload", cfg.Upload.Path),
		zap.Int("categories", catalog.Len()))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by the HTTP server
	if err := wsHandler.Shutdown(ctx); err != nil {
		logger.Warn("WebSocket sessions did not close in time", zap.Error(err))
	}

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
