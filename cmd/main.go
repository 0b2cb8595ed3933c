package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podcast-prep-platform/internal/bootstrap"
	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/queue"
	"podcast-prep-platform/internal/telemetry"
	"podcast-prep-platform/middleware"
	"podcast-prep-platform/routes"
	"podcast-prep-platform/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

const serviceName = "podcast-prep-platform"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer(telemetry.TracerConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			SampleRatio: cfg.TraceSampleRatio,
			Environment: cfg.GinMode,
		})
		if err != nil {
			logger.Warn("tracing disabled", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	}

	deps, err := bootstrap.Build(context.Background(), cfg, metrics)
	if err != nil {
		logger.Error("failed to initialise podcast service", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	var docQueue routes.DocumentQueue
	if cfg.AsyncProcessingEnabled && deps.Redis != nil {
		client := asynq.NewClient(config.AsynqRedisOpt(cfg))
		defer client.Close()
		docQueue = queue.NewDocumentQueue(client, queue.NewJobStore(deps.Redis, cfg.JobResultTTL))
	} else if cfg.AsyncProcessingEnabled {
		logger.Warn("async processing needs redis, async endpoints disabled")
	}

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware(serviceName))
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.MetricsMiddleware(metrics))
	if deps.Redis != nil {
		router.Use(middleware.RateLimitMiddleware(deps.Redis, cfg))
	}
	// Uploads are checked against MaxDocumentSize by the handler; leave room for multipart framing.
	router.Use(middleware.RequestSizeLimit(cfg.MaxDocumentSize + 1<<20))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	routes.SetupPodcastRoutes(router, cfg, deps.Podcast, services.NewDocumentExtractor(), docQueue)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port, "async", docQueue != nil)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
