// Package order proxies the admin order lifecycle. Every state
// transition is guarded locally against the last-read order before the
// upstream call goes out, so an obviously stale action fails fast
// without a round-trip.
package order

import (
	"context"
	"log/slog"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// API is the slice of the upstream client this service uses.
type API interface {
	GetOrders(ctx context.Context, filter upstream.OrderFilter) ([]upstream.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*upstream.Order, error)
	ApproveOrder(ctx context.Context, orderID int64) error
	RejectOrder(ctx context.Context, orderID int64) error
	CompleteOrder(ctx context.Context, orderID int64) error
	SetOrderDownPayment(ctx context.Context, orderID int64) error
	SetOrderSettlement(ctx context.Context, orderID int64) error
	UpdateOrderPrice(ctx context.Context, update upstream.OrderPriceUpdate) error
}

// Service exposes the order list and the lifecycle actions.
type Service struct {
	api    API
	logger *slog.Logger
}

func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger}
}

// List passes the filtered order list through.
func (s *Service) List(ctx context.Context, filter upstream.OrderFilter) ([]upstream.Order, error) {
	return s.api.GetOrders(ctx, filter)
}

// Detail fetches one order.
func (s *Service) Detail(ctx context.Context, orderID int64) (*upstream.Order, error) {
	return s.api.GetOrder(ctx, orderID)
}

// Approve moves an awaiting order into production. The server creates
// the production stages as part of this call.
func (s *Service) Approve(ctx context.Context, orderID int64) (*upstream.Order, error) {
	if err := s.guard(ctx, orderID, upstream.ApprovalAwaitingConfirmation,
		"hanya order berstatus \"Menunggu Konfirmasi\" yang dapat disetujui"); err != nil {
		return nil, err
	}
	if err := s.api.ApproveOrder(ctx, orderID); err != nil {
		return nil, err
	}
	s.logger.Info("order disetujui", slog.Int64("order_id", orderID))
	return s.api.GetOrder(ctx, orderID)
}

// Reject declines an awaiting order.
func (s *Service) Reject(ctx context.Context, orderID int64) (*upstream.Order, error) {
	if err := s.guard(ctx, orderID, upstream.ApprovalAwaitingConfirmation,
		"hanya order berstatus \"Menunggu Konfirmasi\" yang dapat ditolak"); err != nil {
		return nil, err
	}
	if err := s.api.RejectOrder(ctx, orderID); err != nil {
		return nil, err
	}
	s.logger.Info("order ditolak", slog.Int64("order_id", orderID))
	return s.api.GetOrder(ctx, orderID)
}

// Complete closes an in-production order.
func (s *Service) Complete(ctx context.Context, orderID int64) (*upstream.Order, error) {
	if err := s.guard(ctx, orderID, upstream.ApprovalInProgress,
		"hanya order yang sedang diproses yang dapat diselesaikan"); err != nil {
		return nil, err
	}
	if err := s.api.CompleteOrder(ctx, orderID); err != nil {
		return nil, err
	}
	s.logger.Info("order selesai", slog.Int64("order_id", orderID))
	return s.api.GetOrder(ctx, orderID)
}

// SetDownPayment records a down payment on an unpaid order.
func (s *Service) SetDownPayment(ctx context.Context, orderID int64) (*upstream.Order, error) {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != upstream.PaymentUnpaid {
		return nil, &StateError{Msg: "down payment hanya untuk order yang belum bayar"}
	}
	if err := s.api.SetOrderDownPayment(ctx, orderID); err != nil {
		return nil, err
	}
	return s.api.GetOrder(ctx, orderID)
}

// SetSettlement marks the order paid in full. Allowed straight from
// unpaid as well, for customers who pay in one go.
func (s *Service) SetSettlement(ctx context.Context, orderID int64) (*upstream.Order, error) {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == upstream.PaymentPaidInFull {
		return nil, &StateError{Msg: "order sudah lunas"}
	}
	if err := s.api.SetOrderSettlement(ctx, orderID); err != nil {
		return nil, err
	}
	return s.api.GetOrder(ctx, orderID)
}

// UpdatePrice pushes the server-computed costing figures onto the order
// record. The figures come from the RAB summary; nothing is derived
// here.
func (s *Service) UpdatePrice(ctx context.Context, update upstream.OrderPriceUpdate) error {
	if update.OrderID == 0 {
		return &ValidationError{Msg: "order id wajib diisi"}
	}
	return s.api.UpdateOrderPrice(ctx, update)
}

func (s *Service) guard(ctx context.Context, orderID int64, want upstream.ApprovalStatus, msg string) error {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ApprovalStatus != want {
		return &StateError{Msg: msg}
	}
	return nil
}
