package rab

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// Handler wires the costing worksheet endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	trail    *shared.ActionTrail
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, trail *shared.ActionTrail) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		trail:    trail,
		validate: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventories", h.inventories)
	r.Get("/{orderID}/summary", h.summary)
	r.Get("/{orderID}/drafts", h.drafts)
	r.Put("/{orderID}/drafts", h.stageRow)
	r.Delete("/{orderID}/drafts", h.discardRow)
	r.Post("/{orderID}/submit", h.submit)
	r.Put("/{orderID}/percentage", h.updatePercentage)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	summary, err := h.service.Summary(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, summary)
}

// inventoryView adds the resolved picker label to the raw record.
type inventoryView struct {
	upstream.Inventory
	Label string `json:"label"`
}

func (h *Handler) inventories(w http.ResponseWriter, r *http.Request) {
	filter := upstream.InventoryFilter{Search: r.URL.Query().Get("search")}
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	inventories, err := h.service.Inventories(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]inventoryView, 0, len(inventories))
	for _, inv := range inventories {
		views = append(views, inventoryView{Inventory: inv, Label: inv.DisplayName()})
	}
	httpx.OK(w, views)
}

// draftView pairs a staged row with its composite key.
type draftView struct {
	ProductID int64                            `json:"productId"`
	SizeName  string                           `json:"sizeName"`
	Row       upstream.CostBudgetPlanItemInput `json:"row"`
}

func (h *Handler) drafts(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	staged := h.service.Drafts(orderID).Snapshot()
	views := make([]draftView, 0, len(staged))
	for key, row := range staged {
		views = append(views, draftView{ProductID: key.ProductID, SizeName: key.SizeName, Row: row})
	}
	httpx.OK(w, views)
}

func (h *Handler) stageRow(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var row upstream.CostBudgetPlanItemInput
	if err := httpx.DecodeJSON(r, &row); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.StageRow(orderID, row); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

type discardRequest struct {
	ProductID int64  `json:"productId" validate:"required"`
	SizeName  string `json:"sizeName" validate:"required"`
}

func (h *Handler) discardRow(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req discardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "produk dan ukuran wajib diisi")
		return
	}
	h.service.DiscardRow(orderID, DraftKey{ProductID: req.ProductID, SizeName: req.SizeName})
	httpx.NoContent(w)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	summary, err := h.service.Submit(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.trail.Record("rab", "submit", strconv.FormatInt(orderID, 10))
	httpx.OK(w, summary)
}

type percentageRequest struct {
	SummaryID                    int64   `json:"summaryId"`
	SettingMainDevelopPercentage float64 `json:"mainDevelopPercentage"`
	SettingIncentivePercentage   float64 `json:"incentivePercentage"`
	SettingMarketingPercentage   float64 `json:"marketingPercentage"`
}

func (h *Handler) updatePercentage(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req percentageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	summary, err := h.service.UpdatePercentage(r.Context(), orderID, upstream.SummaryPercentageUpdate{
		SummaryID:                    req.SummaryID,
		SettingMainDevelopPercentage: req.SettingMainDevelopPercentage,
		SettingIncentivePercentage:   req.SettingIncentivePercentage,
		SettingMarketingPercentage:   req.SettingMarketingPercentage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.trail.Record("rab", "update_percentage", strconv.FormatInt(orderID, 10))
	httpx.OK(w, summary)
}

func pathOrderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}
