package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/zumar-garment/zumar-orderdesk/internal/app"
	jobmetrics "github.com/zumar-garment/zumar-orderdesk/internal/jobs"
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/cache"
	"github.com/zumar-garment/zumar-orderdesk/internal/tracking"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
	"github.com/zumar-garment/zumar-orderdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	// The warmup worker exists to fill the cache, so unlike the HTTP
	// binary it refuses to run without Redis.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger)
	trackingService := tracking.NewService(client, redisClient, cfg.TrackingTTL, logger)
	metrics := jobmetrics.NewMetrics(nil)

	warmupTask, err := jobs.NewTrackingWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTrackingWarmup, Handler: jobs.TrackingWarmupHandler(trackingService, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.TrackingWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
