package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/zumar-garment/zumar-orderdesk/internal/jobs"
	"github.com/zumar-garment/zumar-orderdesk/internal/tracking"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTrackingWarmup rebuilds tracking snapshots for in-progress
	// orders so customer lookups hit warm cache.
	TaskTrackingWarmup = "tracking:warmup"
)

// TrackingWarmupPayload is currently empty; the task always covers all
// in-progress orders. Kept as a struct so a scope can be added without
// changing the wire format.
type TrackingWarmupPayload struct{}

// NewTrackingWarmupTask constructs the warmup task.
func NewTrackingWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(TrackingWarmupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrackingWarmup, data), nil
}

// TrackingWarmupHandler returns the asynq handler for warmup tasks.
func TrackingWarmupHandler(svc *tracking.Service, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload TrackingWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		tracker := metrics.Track("tracking_warmup")
		warmed, err := svc.Warm(ctx)
		if err != nil {
			logger.Error("warmup snapshot tracking gagal", slog.Any("error", err))
			return tracker.End(err)
		}
		metrics.AddWarmedSnapshots(warmed)
		logger.Info("warmup snapshot tracking selesai", slog.Int("warmed", warmed))
		return tracker.End(nil)
	}
}
