package order

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/shared"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// Handler wires the admin order endpoints.
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
	r.Get("/", h.list)
	r.Put("/price", h.updatePrice)
	r.Get("/{orderID}", h.detail)
	r.Put("/{orderID}/approve", h.action("approve", h.service.Approve))
	r.Put("/{orderID}/reject", h.action("reject", h.service.Reject))
	r.Put("/{orderID}/complete", h.action("complete", h.service.Complete))
	r.Put("/{orderID}/payment/down-payment", h.action("down_payment", h.service.SetDownPayment))
	r.Put("/{orderID}/payment/settlement", h.action("settlement", h.service.SetSettlement))
}

// View is the list/detail row with display labels resolved.
type View struct {
	ID                  int64      `json:"id"`
	Number              string     `json:"number"`
	PoNumber            string     `json:"poNumber"`
	Name                string     `json:"name"`
	Phone               string     `json:"phone"`
	ApprovalStatus      int        `json:"approvalStatus"`
	ApprovalStatusLabel string     `json:"approvalStatusLabel"`
	PaymentStatus       int        `json:"paymentStatus"`
	PaymentStatusLabel  string     `json:"paymentStatusLabel"`
	DeadlineAt          *time.Time `json:"deadlineAt"`
	Price               float64    `json:"price"`
	TotalAmount         int        `json:"totalAmount"`
	Notes               string     `json:"notes"`
}

func toView(o upstream.Order) View {
	return View{
		ID:                  o.ID,
		Number:              o.Number,
		PoNumber:            o.PoNumber,
		Name:                o.Name,
		Phone:               o.Phone,
		ApprovalStatus:      int(o.ApprovalStatus),
		ApprovalStatusLabel: o.ApprovalStatus.Label(),
		PaymentStatus:       int(o.PaymentStatus),
		PaymentStatusLabel:  o.PaymentStatus.Label(),
		DeadlineAt:          o.DeadlineAt,
		Price:               o.Price,
		TotalAmount:         o.TotalAmount,
		Notes:               o.Notes,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := upstream.OrderFilter{}
	q := r.URL.Query()
	if v := q.Get("approvalStatus"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil || code < 1 || code > 4 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "filter approvalStatus tidak valid")
			return
		}
		status := upstream.ApprovalStatus(code)
		filter.ApprovalStatus = &status
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]View, 0, len(orders))
	for _, o := range orders {
		views = append(views, toView(o))
	}
	httpx.OK(w, views)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, err := h.service.Detail(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, order)
}

// action adapts one lifecycle transition into a handler.
func (h *Handler) action(name string, fn func(context.Context, int64) (*upstream.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
			return
		}
		order, err := fn(r.Context(), orderID)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		h.trail.Record("order", name, strconv.FormatInt(orderID, 10))
		httpx.OK(w, toView(*order))
	}
}

type priceRequest struct {
	OrderID         int64   `json:"oId" validate:"required"`
	Price           float64 `json:"oPrice" validate:"gte=0"`
	DownPayment     float64 `json:"oDownPayment" validate:"gte=0"`
	Paid            float64 `json:"oPaid" validate:"gte=0"`
	Cogs            float64 `json:"oCogs" validate:"gte=0"`
	Margin          float64 `json:"oMargin"`
	ProfitRemaining float64 `json:"oProfitRemaining"`
	Marketing       float64 `json:"oMarketing" validate:"gte=0"`
	Incentive       float64 `json:"oIncentive" validate:"gte=0"`
	MainDevelop     float64 `json:"oMainDevelop" validate:"gte=0"`
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "data harga tidak valid")
		return
	}

	err := h.service.UpdatePrice(r.Context(), upstream.OrderPriceUpdate{
		OrderID:         req.OrderID,
		Price:           req.Price,
		DownPayment:     req.DownPayment,
		Paid:            req.Paid,
		Cogs:            req.Cogs,
		Margin:          req.Margin,
		ProfitRemaining: req.ProfitRemaining,
		Marketing:       req.Marketing,
		Incentive:       req.Incentive,
		MainDevelop:     req.MainDevelop,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.trail.Record("order", "update_price", strconv.FormatInt(req.OrderID, 10))
	httpx.NoContent(w)
}
