package shared

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActionEntry is one recorded back-office action. Nothing here is
// durable; the trail feeds the recent-activity panel and the logs.
type ActionEntry struct {
	ID     uuid.UUID `json:"id"`
	Module string    `json:"module"`
	Action string    `json:"action"`
	Ref    string    `json:"ref"`
	At     time.Time `json:"at"`
}

// ActionTrail keeps a bounded in-memory ring of recent actions and
// mirrors each entry to the structured log.
type ActionTrail struct {
	logger *slog.Logger
	limit  int

	mu      sync.Mutex
	entries []ActionEntry
}

// NewActionTrail constructs a trail holding at most limit entries.
func NewActionTrail(logger *slog.Logger, limit int) *ActionTrail {
	if limit <= 0 {
		limit = 200
	}
	return &ActionTrail{logger: logger, limit: limit}
}

// Record appends one action.
func (t *ActionTrail) Record(module, action, ref string) {
	if t == nil {
		return
	}
	entry := ActionEntry{
		ID:     uuid.New(),
		Module: module,
		Action: action,
		Ref:    ref,
		At:     time.Now(),
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.limit {
		t.entries = t.entries[len(t.entries)-t.limit:]
	}
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Info("admin action",
			slog.String("audit_id", entry.ID.String()),
			slog.String("module", module),
			slog.String("action", action),
			slog.String("ref", ref))
	}
}

// Recent returns up to n latest entries, newest first.
func (t *ActionTrail) Recent(n int) []ActionEntry {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > len(t.entries) {
		n = len(t.entries)
	}
	out := make([]ActionEntry, 0, n)
	for i := len(t.entries) - 1; i >= len(t.entries)-n; i-- {
		out = append(out, t.entries[i])
	}
	return out
}
