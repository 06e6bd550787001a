package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contentflow/internal/api"
	"contentflow/internal/config"
	"contentflow/internal/repository/mongo"
	"contentflow/internal/service"
	"contentflow/internal/storage"
	"contentflow/internal/transform"

	"github.com/gin-gonic/gin"
)

// @title Content Pipeline API
// @version 1.0
// @description Ingests uploaded image objects, derives resized variants and
// @description content metadata, and serves per-user analytics.
// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("could not load config", "error", err)
		os.Exit(1)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	{
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		if err := mongo.EnsureContentIndexes(ctx, appDB.Collection(cfg.Pipeline.ContentCollection)); err != nil {
			logger.Warn("failed to create content indexes", "error", err)
		}
		cancel()
	}

	// --- Initialize Storage ---
	objectStore, err := storage.NewS3Storage(cfg.S3, logger)
	if err != nil {
		logger.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}

	// --- Initialize Repositories ---
	contentRepo := mongo.NewMongoContentRepository(appDB, cfg.Pipeline.ContentCollection)
	analyticsRepo := mongo.NewMongoAnalyticsRepository(appDB, cfg.Pipeline.AnalyticsCollection)

	// --- Initialize Services ---
	transformer := transform.NewJPEGTransformer(cfg.Pipeline.MaxWidth, cfg.Pipeline.MaxHeight, cfg.Pipeline.JPEGQuality)
	ingestService := service.NewIngestService(
		contentRepo, analyticsRepo, objectStore, transformer,
		service.IngestOptions{ProcessedBucket: cfg.S3.ProcessedBucket},
		logger,
	)
	analyticsService := service.NewAnalyticsService(contentRepo, analyticsRepo, cfg.Pipeline.GlobalScanLimit, logger)

	// --- Initialize Gin Engine ---
	router := gin.Default()
	api.SetupRoutes(router, cfg.Auth, ingestService, analyticsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server starting", "address", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen and serve error", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
