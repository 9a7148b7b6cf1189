package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/zumar-garment/zumar-orderdesk/internal/app"
	"github.com/zumar-garment/zumar-orderdesk/internal/observability"
	"github.com/zumar-garment/zumar-orderdesk/internal/order"
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/cache"
	"github.com/zumar-garment/zumar-orderdesk/internal/progress"
	"github.com/zumar-garment/zumar-orderdesk/internal/rab"
	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
	"github.com/zumar-garment/zumar-orderdesk/internal/tracking"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
	"github.com/zumar-garment/zumar-orderdesk/internal/users"
	"github.com/zumar-garment/zumar-orderdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	metrics := observability.NewMetrics()

	// Tracking keeps working without Redis, every lookup just goes
	// upstream.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, tracking cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger,
		upstream.WithObserver(metrics.ObserveUpstream))
	if err := client.Ping(ctx); err != nil {
		logger.Warn("upstream ping", slog.Any("error", err))
	}

	trail := shared.NewActionTrail(logger, 256)

	progressManager := progress.NewManager(client, progress.SettlePolicy{Delay: cfg.SettleDelay}, logger)
	progressHandler := progress.NewHandler(logger, progressManager, trail)

	orderService := order.NewService(client, logger)
	orderHandler := order.NewHandler(logger, orderService, trail)

	rabService := rab.NewService(client, logger)
	rabHandler := rab.NewHandler(logger, rabService, trail)

	trackingService := tracking.NewService(client, redisClient, cfg.TrackingTTL, logger)

	// The warmup queue shares the tracking cache's Redis; without it the
	// on-demand warmup endpoint answers 503.
	var warmupQueue tracking.WarmupQueue
	if redisClient != nil {
		queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Warn("asynq client", slog.Any("error", err))
		} else {
			warmupQueue = queueClient
			defer func() {
				if err := queueClient.Close(); err != nil {
					logger.Warn("asynq client close", slog.Any("error", err))
				}
			}()
		}
	}
	trackingHandler := tracking.NewHandler(logger, trackingService, warmupQueue)

	directory := users.NewDirectory(client, cfg.WorkerTTL, logger)
	usersHandler := users.NewHandler(logger, directory)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		OrderHandler:    orderHandler,
		ProgressHandler: progressHandler,
		RabHandler:      rabHandler,
		TrackingHandler: trackingHandler,
		UsersHandler:    usersHandler,
		Trail:           trail,
		Metrics:         metrics,
		UpstreamPing: func(r *http.Request) error {
			return client.Ping(r.Context())
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
