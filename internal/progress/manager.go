package progress

import (
	"log/slog"
	"sync"
)

// Manager hands out one aggregator per order so repeated page visits
// reuse the same cache and in-flight guard.
type Manager struct {
	api    API
	settle SettlePolicy
	logger *slog.Logger

	mu      sync.Mutex
	byOrder map[int64]*Aggregator
}

// NewManager constructs a Manager.
func NewManager(api API, settle SettlePolicy, logger *slog.Logger) *Manager {
	return &Manager{
		api:     api,
		settle:  settle,
		logger:  logger,
		byOrder: make(map[int64]*Aggregator),
	}
}

// ForOrder returns the aggregator for an order, creating it on first
// use.
func (m *Manager) ForOrder(orderID int64) *Aggregator {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg, ok := m.byOrder[orderID]
	if !ok {
		agg = NewAggregator(m.api, orderID, m.settle, m.logger)
		m.byOrder[orderID] = agg
	}
	return agg
}

// Evict drops an order's aggregator, forcing a cold load next time.
func (m *Manager) Evict(orderID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byOrder, orderID)
}
