package rab

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// API is the slice of the upstream client this service uses.
type API interface {
	GetOrder(ctx context.Context, orderID int64) (*upstream.Order, error)
	GetCostBudgetPlanSummary(ctx context.Context, orderID int64) (*upstream.CostBudgetPlanSummary, error)
	GetInventories(ctx context.Context, filter upstream.InventoryFilter) ([]upstream.Inventory, error)
	UpdateCostBudgetPlan(ctx context.Context, summaryID int64, items []upstream.CostBudgetPlanItemInput) error
	UpdateSummaryPercentage(ctx context.Context, update upstream.SummaryPercentageUpdate) error
	UpdateOrderPrice(ctx context.Context, update upstream.OrderPriceUpdate) error
}

// Service stages costing edits per order and submits them as one
// batch, then carries the recomputed figures onto the order record.
type Service struct {
	api    API
	logger *slog.Logger

	mu      sync.Mutex
	byOrder map[int64]*DraftStore
}

func NewService(api API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     api,
		logger:  logger,
		byOrder: make(map[int64]*DraftStore),
	}
}

// Drafts returns the draft store for an order, creating it on first
// use.
func (s *Service) Drafts(orderID int64) *DraftStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	store, ok := s.byOrder[orderID]
	if !ok {
		store = NewDraftStore()
		s.byOrder[orderID] = store
	}
	return store
}

// Summary fetches the order's costing worksheet.
func (s *Service) Summary(ctx context.Context, orderID int64) (*upstream.CostBudgetPlanSummary, error) {
	return s.api.GetCostBudgetPlanSummary(ctx, orderID)
}

// Inventories lists raw materials for the picker.
func (s *Service) Inventories(ctx context.Context, filter upstream.InventoryFilter) ([]upstream.Inventory, error) {
	return s.api.GetInventories(ctx, filter)
}

// StageRow stages one row edit locally. Nothing is sent upstream until
// Submit.
func (s *Service) StageRow(orderID int64, row upstream.CostBudgetPlanItemInput) error {
	if row.ProductID == 0 || row.SizeGroup == "" {
		return &ValidationError{Msg: "produk dan ukuran wajib diisi"}
	}
	if row.Amount < 0 || row.MaterialNeed < 0 || row.MaterialPrice < 0 {
		return &ValidationError{Msg: "nilai tidak boleh negatif"}
	}
	s.Drafts(orderID).Put(DraftKey{ProductID: row.ProductID, SizeName: row.SizeGroup}, row)
	return nil
}

// DiscardRow drops one staged edit.
func (s *Service) DiscardRow(orderID int64, key DraftKey) {
	s.Drafts(orderID).Delete(key)
}

// Submit pushes all staged rows upstream in one call, re-reads the
// recomputed summary, and mirrors its figures onto the order record.
// Drafts are cleared only after the batch is accepted.
func (s *Service) Submit(ctx context.Context, orderID int64) (*upstream.CostBudgetPlanSummary, error) {
	store := s.Drafts(orderID)
	staged := store.Snapshot()
	if len(staged) == 0 {
		return nil, &ValidationError{Msg: "tidak ada perubahan RAB untuk disimpan"}
	}

	summary, err := s.api.GetCostBudgetPlanSummary(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items := make([]upstream.CostBudgetPlanItemInput, 0, len(staged))
	for _, row := range staged {
		items = append(items, row)
	}
	if err := s.api.UpdateCostBudgetPlan(ctx, summary.ID, items); err != nil {
		return nil, err
	}
	store.Clear()

	refreshed, err := s.api.GetCostBudgetPlanSummary(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.syncOrderPrice(ctx, orderID, refreshed); err != nil {
		return nil, err
	}

	s.logger.Info("RAB tersimpan",
		slog.Int64("order_id", orderID), slog.Int("rows", len(items)))
	return refreshed, nil
}

// UpdatePercentage adjusts the profit-sharing split and mirrors the
// recomputed figures onto the order record.
func (s *Service) UpdatePercentage(ctx context.Context, orderID int64, update upstream.SummaryPercentageUpdate) (*upstream.CostBudgetPlanSummary, error) {
	if update.SettingMainDevelopPercentage < 0 || update.SettingIncentivePercentage < 0 || update.SettingMarketingPercentage < 0 {
		return nil, &ValidationError{Msg: "persentase tidak boleh negatif"}
	}
	if total := update.SettingMainDevelopPercentage + update.SettingIncentivePercentage + update.SettingMarketingPercentage; total > 100 {
		return nil, &ValidationError{Msg: "total persentase melebihi 100"}
	}

	if update.SummaryID == 0 {
		summary, err := s.api.GetCostBudgetPlanSummary(ctx, orderID)
		if err != nil {
			return nil, err
		}
		update.SummaryID = summary.ID
	}
	if err := s.api.UpdateSummaryPercentage(ctx, update); err != nil {
		return nil, err
	}

	refreshed, err := s.api.GetCostBudgetPlanSummary(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.syncOrderPrice(ctx, orderID, refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// syncOrderPrice copies the summary's server-computed figures onto the
// order. Payment figures already on the order are preserved.
func (s *Service) syncOrderPrice(ctx context.Context, orderID int64, summary *upstream.CostBudgetPlanSummary) error {
	order, err := s.api.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return s.api.UpdateOrderPrice(ctx, upstream.OrderPriceUpdate{
		OrderID:         orderID,
		Price:           summary.TotalOff,
		DownPayment:     order.DownPayment,
		Paid:            order.Paid,
		Cogs:            summary.Cogs,
		Margin:          summary.MarginTotal,
		ProfitRemaining: summary.ProfitRemaining,
		Marketing:       summary.Marketing,
		Incentive:       summary.Incentive,
		MainDevelop:     summary.MainDevelop,
	})
}
