package progress

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
)

// Handler wires the admin progress endpoints.
type Handler struct {
	logger   *slog.Logger
	manager  *Manager
	trail    *shared.ActionTrail
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, manager *Manager, trail *shared.ActionTrail) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		manager:  manager,
		trail:    trail,
		validate: validator.New(),
	}
}

// MountRoutes registers progress routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{orderID}/tree", h.tree)
	r.Delete("/{orderID}/cache", h.evictCache)
	r.Post("/{orderID}/items", h.addItem)
	r.Delete("/{orderID}/items/{itemID}", h.deleteItem)
	r.Post("/{orderID}/items/{itemID}/details", h.addDetail)
	r.Put("/{orderID}/details/{detailID}", h.editDetail)
	r.Delete("/{orderID}/details/{detailID}", h.deleteDetail)
}

func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	agg := h.manager.ForOrder(orderID)
	tree, err := agg.LoadTree(r.Context())
	if err != nil {
		h.logger.Error("load progress tree", slog.Int64("order_id", orderID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, BuildView(tree))
}

func (h *Handler) evictCache(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	h.manager.Evict(orderID)
	h.trail.Record("progress", "evict_cache", strconv.FormatInt(orderID, 10))
	httpx.NoContent(w)
}

type addItemRequest struct {
	MainID          int64  `json:"mainId" validate:"required"`
	OrderItemSizeID int64  `json:"orderItemSizeId" validate:"required"`
	WorkerID        string `json:"workerId" validate:"required"`
	Amount          int    `json:"amount" validate:"required,gt=0"`
	DeadlineAt      string `json:"deadlineAt" validate:"required"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "mohon lengkapi semua field yang required")
		return
	}
	deadline, err := shared.ParseWIB(req.DeadlineAt)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "format deadline tidak valid")
		return
	}

	agg := h.manager.ForOrder(orderID)
	err = agg.AddProgressItem(r.Context(), AddItemInput{
		MainID:          req.MainID,
		OrderItemSizeID: req.OrderItemSizeID,
		WorkerID:        req.WorkerID,
		Amount:          req.Amount,
		DeadlineAt:      deadline,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.trail.Record("progress", "add_item", strconv.FormatInt(orderID, 10))
	httpx.OK(w, BuildView(agg.Snapshot()))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return
	}

	agg := h.manager.ForOrder(orderID)
	if err := agg.DeleteProgressItem(r.Context(), itemID); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.trail.Record("progress", "delete_item", strconv.FormatInt(itemID, 10))
	httpx.OK(w, BuildView(agg.Snapshot()))
}

type detailRequest struct {
	Amount     int    `json:"amount" validate:"required,gt=0"`
	FinishedAt string `json:"finishedAt" validate:"required"`
}

func (h *Handler) addDetail(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid item id")
		return
	}

	input, ok := h.decodeDetail(w, r)
	if !ok {
		return
	}

	agg := h.manager.ForOrder(orderID)
	if err := agg.AddProgressDetail(r.Context(), itemID, input); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.trail.Record("progress", "add_detail", strconv.FormatInt(itemID, 10))
	httpx.OK(w, BuildView(agg.Snapshot()))
}

func (h *Handler) editDetail(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	detailID, err := pathID(r, "detailID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid detail id")
		return
	}

	input, ok := h.decodeDetail(w, r)
	if !ok {
		return
	}

	agg := h.manager.ForOrder(orderID)
	if err := agg.EditProgressDetail(r.Context(), detailID, input); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.trail.Record("progress", "edit_detail", strconv.FormatInt(detailID, 10))
	httpx.OK(w, BuildView(agg.Snapshot()))
}

func (h *Handler) deleteDetail(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	detailID, err := pathID(r, "detailID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid detail id")
		return
	}

	agg := h.manager.ForOrder(orderID)
	if err := agg.DeleteProgressDetail(r.Context(), detailID); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.trail.Record("progress", "delete_detail", strconv.FormatInt(detailID, 10))
	httpx.OK(w, BuildView(agg.Snapshot()))
}

func (h *Handler) decodeDetail(w http.ResponseWriter, r *http.Request) (DetailInput, bool) {
	var req detailRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return DetailInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "mohon lengkapi semua field yang required")
		return DetailInput{}, false
	}
	finishedAt, err := shared.ParseWIB(req.FinishedAt)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "format tanggal selesai tidak valid")
		return DetailInput{}, false
	}
	return DetailInput{Amount: req.Amount, FinishedAt: finishedAt}, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
