package tracking

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
)

// WarmupQueue enqueues a background snapshot warmup run.
type WarmupQueue interface {
	EnqueueTrackingWarmup(ctx context.Context) (*asynq.TaskInfo, error)
}

// Handler wires the public tracking endpoint plus the back-office
// warmup trigger.
type Handler struct {
	logger  *slog.Logger
	service *Service
	queue   WarmupQueue
}

func NewHandler(logger *slog.Logger, service *Service, queue WarmupQueue) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, queue: queue}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{number}", h.lookup)
}

// MountAdminRoutes exposes the on-demand warmup for back-office use.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/warmup", h.warmup)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Lookup(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, snapshot)
}

func (h *Handler) warmup(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable",
			"antrean pemanasan tidak tersedia tanpa redis")
		return
	}
	info, err := h.queue.EnqueueTrackingWarmup(r.Context())
	if err != nil {
		h.logger.Warn("enqueue tracking warmup", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Queue Error",
			"gagal mengantrekan pemanasan cache pelacakan")
		return
	}
	httpx.JSON(w, http.StatusAccepted, httpx.Envelope{Data: map[string]string{
		"taskId": info.ID,
		"queue":  info.Queue,
	}})
}
