// Package rab mirrors the per-order cost budget plan ("Rencana
// Anggaran Biaya"). All financial figures are computed upstream; this
// package only stages row edits locally and pushes them in one batch.
package rab

import (
	"sync"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// DraftKey identifies one costing row by its product and size group.
type DraftKey struct {
	ProductID int64
	SizeName  string
}

// DraftStore stages unsaved row edits for one order. Reads snapshot,
// writes replace whole values, nothing merges.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[DraftKey]upstream.CostBudgetPlanItemInput
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[DraftKey]upstream.CostBudgetPlanItemInput)}
}

// Put replaces the staged edit for a row.
func (s *DraftStore) Put(key DraftKey, row upstream.CostBudgetPlanItemInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = row
}

// Get returns the staged edit for a row, if any.
func (s *DraftStore) Get(key DraftKey) (upstream.CostBudgetPlanItemInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.drafts[key]
	return row, ok
}

// Delete drops one staged edit.
func (s *DraftStore) Delete(key DraftKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
}

// Snapshot returns a copy of all staged edits.
func (s *DraftStore) Snapshot() map[DraftKey]upstream.CostBudgetPlanItemInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[DraftKey]upstream.CostBudgetPlanItemInput, len(s.drafts))
	for k, v := range s.drafts {
		out[k] = v
	}
	return out
}

// Clear drops every staged edit. Called after a successful submit.
func (s *DraftStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = make(map[DraftKey]upstream.CostBudgetPlanItemInput)
}

// Len reports how many rows are staged.
func (s *DraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
