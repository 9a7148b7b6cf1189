package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zumar-garment/zumar-orderdesk/internal/observability"
	"github.com/zumar-garment/zumar-orderdesk/internal/order"
	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/progress"
	"github.com/zumar-garment/zumar-orderdesk/internal/rab"
	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
	"github.com/zumar-garment/zumar-orderdesk/internal/tracking"
	"github.com/zumar-garment/zumar-orderdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	OrderHandler    *order.Handler
	ProgressHandler *progress.Handler
	RabHandler      *rab.Handler
	TrackingHandler *tracking.Handler
	UsersHandler    *users.Handler
	Trail           *shared.ActionTrail
	Metrics         *observability.Metrics
	UpstreamPing    func(r *http.Request) error
}

// NewRouter constructs the chi.Router with orderdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.UpstreamPing != nil {
			if err := params.UpstreamPing(r); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded","upstream":"unreachable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/admin", func(r chi.Router) {
		if params.OrderHandler != nil {
			r.Route("/orders", params.OrderHandler.MountRoutes)
		}
		if params.ProgressHandler != nil {
			r.Route("/progress", params.ProgressHandler.MountRoutes)
		}
		if params.RabHandler != nil {
			r.Route("/rab", params.RabHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/workers", params.UsersHandler.MountRoutes)
		}
		if params.TrackingHandler != nil {
			r.Route("/tracking", params.TrackingHandler.MountAdminRoutes)
		}
		if params.Trail != nil {
			r.Get("/activity", func(w http.ResponseWriter, r *http.Request) {
				httpx.OK(w, params.Trail.Recent(50))
			})
		}
	})

	if params.TrackingHandler != nil {
		r.Route("/track", func(r chi.Router) {
			r.Use(TrackingRateLimit())
			params.TrackingHandler.MountRoutes(r)
		})
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
