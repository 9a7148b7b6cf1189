// Package tracking serves the public order-tracking lookup: an order
// number in, per-stage completion out. Snapshots are built from the
// server-maintained stage aggregates, cached in Redis, and deduplicated
// so a popular order number costs one upstream round-trip at a time.
package tracking

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/zumar-garment/zumar-orderdesk/internal/progress"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// API is the slice of the upstream client this service uses.
type API interface {
	GetOrders(ctx context.Context, filter upstream.OrderFilter) ([]upstream.Order, error)
	GetProgressMains(ctx context.Context, orderID int64) ([]upstream.ProgressMain, error)
}

// StageProgress is one production stage as shown to the customer.
type StageProgress struct {
	Label      string `json:"label"`
	Done       int    `json:"done"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// Snapshot is the tracking answer for one order number.
type Snapshot struct {
	OrderID     int64           `json:"orderId"`
	Number      string          `json:"number"`
	StatusLabel string          `json:"statusLabel"`
	Stages      []StageProgress `json:"stages"`
	Percentage  int             `json:"percentage"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Service answers tracking lookups through a Redis snapshot cache.
type Service struct {
	api    API
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewService constructs the tracking service. rdb may be nil; lookups
// then always hit upstream.
func NewService(api API, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    api,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func cacheKey(number string) string {
	return "tracking:snapshot:" + number
}

// Lookup resolves an order number to its tracking snapshot, serving
// from cache when fresh.
func (s *Service) Lookup(ctx context.Context, number string) (*Snapshot, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, &ValidationError{Msg: "nomor order wajib diisi"}
	}

	if cached := s.fromCache(ctx, number); cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do(number, func() (any, error) {
		// Re-check inside the flight; a sibling may have just stored it.
		if cached := s.fromCache(ctx, number); cached != nil {
			return cached, nil
		}
		snapshot, err := s.build(ctx, number)
		if err != nil {
			return nil, err
		}
		s.store(ctx, number, snapshot)
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Warm rebuilds snapshots for every in-progress order. Run from the
// background worker so customer lookups mostly hit warm cache.
func (s *Service) Warm(ctx context.Context) (int, error) {
	status := upstream.ApprovalInProgress
	orders, err := s.api.GetOrders(ctx, upstream.OrderFilter{ApprovalStatus: &status})
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, order := range orders {
		if order.Number == "" {
			continue
		}
		number := strings.ToUpper(strings.TrimSpace(order.Number))
		snapshot, err := s.snapshotOrder(ctx, order)
		if err != nil {
			s.logger.Warn("gagal warmup snapshot tracking",
				slog.String("number", number), slog.Any("error", err))
			continue
		}
		s.store(ctx, number, snapshot)
		warmed++
	}
	return warmed, nil
}

func (s *Service) build(ctx context.Context, number string) (*Snapshot, error) {
	orders, err := s.api.GetOrders(ctx, upstream.OrderFilter{Number: number})
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if strings.EqualFold(strings.TrimSpace(order.Number), number) {
			return s.snapshotOrder(ctx, order)
		}
	}
	return nil, &NotFoundError{Number: number}
}

func (s *Service) snapshotOrder(ctx context.Context, order upstream.Order) (*Snapshot, error) {
	mains, err := s.api.GetProgressMains(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		OrderID:     order.ID,
		Number:      order.Number,
		StatusLabel: order.ApprovalStatus.Label(),
		GeneratedAt: s.now(),
	}
	done, total := 0, 0
	for pos, main := range mains {
		snapshot.Stages = append(snapshot.Stages, StageProgress{
			Label:      progress.StageLabel(main, pos),
			Done:       main.AmountTotalDone,
			Total:      main.AmountTotal,
			Percentage: progress.Percent(main.AmountTotalDone, main.AmountTotal),
		})
		done += main.AmountTotalDone
		total += main.AmountTotal
	}
	snapshot.Percentage = progress.Percent(done, total)
	return snapshot, nil
}

func (s *Service) fromCache(ctx context.Context, number string) *Snapshot {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, cacheKey(number)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("cache tracking tidak terbaca", slog.Any("error", err))
		}
		return nil
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

func (s *Service) store(ctx context.Context, number string, snapshot *Snapshot) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(number), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("cache tracking tidak tersimpan", slog.Any("error", err))
	}
}
