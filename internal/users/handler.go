package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
)

// Handler wires the worker directory endpoint.
type Handler struct {
	logger    *slog.Logger
	directory *Directory
}

func NewHandler(logger *slog.Logger, directory *Directory) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, directory: directory}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{workerID}", h.byID)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	workers, err := h.directory.Workers(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, workers)
}

type workerView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request) {
	workerID := chi.URLParam(r, "workerID")
	httpx.OK(w, workerView{ID: workerID, Name: h.directory.Name(r.Context(), workerID)})
}

// refresh drops the cached directory and refetches, for when the
// back office just added a worker upstream.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	h.directory.Invalidate()
	workers, err := h.directory.Workers(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, workers)
}
