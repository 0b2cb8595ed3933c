package main

import (
	"context"
	"os"

	"podcast-prep-platform/internal/bootstrap"
	"podcast-prep-platform/internal/config"
	"podcast-prep-platform/internal/logger"
	"podcast-prep-platform/internal/queue"
	"podcast-prep-platform/internal/telemetry"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.InitLogger(cfg)

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

	if deps.Redis == nil {
		logger.Error("worker needs redis for job status")
		os.Exit(1)
	}

	redisOpt := config.AsynqRedisOpt(cfg)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				queue.QueueCritical: 6,
				"default":           3,
				"low":               1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Error("task failed",
					"type", task.Type(),
					"attempt", retried+1,
					"max_retry", maxRetry,
					"error", err,
				)
			}),
		},
	)

	processor := queue.NewTaskProcessor(deps.Podcast, queue.NewJobStore(deps.Redis, cfg.JobResultTTL))

	mux := asynq.NewServeMux()
	processor.Register(mux)

	logger.Info("starting asynq worker", "concurrency", 10, "redis", redisOpt.Addr)

	if err := server.Run(mux); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
