package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
	_ "github.com/zumar-garment/zumar-orderdesk/testing"
)

type fakeAPI struct {
	mu         sync.Mutex
	orders     []upstream.Order
	mainsByID  map[int64][]upstream.ProgressMain
	listCalls  int
	mainsCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		orders: []upstream.Order{
			{ID: 7, Number: "ORD-2026-007", ApprovalStatus: upstream.ApprovalInProgress},
			{ID: 8, Number: "ORD-2026-008", ApprovalStatus: upstream.ApprovalCompleted},
		},
		mainsByID: map[int64][]upstream.ProgressMain{
			7: {
				{ID: 1, Name: "POTONG", AmountTotal: 100, AmountTotalDone: 100},
				{ID: 2, Name: "JAHIT", AmountTotal: 100, AmountTotalDone: 30},
			},
			8: {
				{ID: 3, Name: "POTONG", AmountTotal: 50, AmountTotalDone: 50},
			},
		},
	}
}

func (f *fakeAPI) GetOrders(ctx context.Context, filter upstream.OrderFilter) ([]upstream.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []upstream.Order
	for _, o := range f.orders {
		if filter.Number != "" && o.Number != filter.Number {
			continue
		}
		if filter.ApprovalStatus != nil && o.ApprovalStatus != *filter.ApprovalStatus {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeAPI) GetProgressMains(ctx context.Context, orderID int64) ([]upstream.ProgressMain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mainsCalls++
	return f.mainsByID[orderID], nil
}

func testService(t *testing.T, api API) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(api, rdb, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC) }
	return svc, mr
}

func TestLookupBuildsSnapshot(t *testing.T) {
	api := newFakeAPI()
	svc, _ := testService(t, api)

	snapshot, err := svc.Lookup(context.Background(), " ord-2026-007 ")
	require.NoError(t, err)

	require.Equal(t, int64(7), snapshot.OrderID)
	require.Equal(t, "Order Dibuat/Diproses", snapshot.StatusLabel)
	require.Len(t, snapshot.Stages, 2)
	require.Equal(t, 100, snapshot.Stages[0].Percentage)
	require.Equal(t, 30, snapshot.Stages[1].Percentage)
	require.Equal(t, 65, snapshot.Percentage)
}

func TestLookupServesFromCache(t *testing.T) {
	api := newFakeAPI()
	svc, mr := testService(t, api)

	_, err := svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	require.Equal(t, 1, api.listCalls)
	require.Equal(t, 1, api.mainsCalls)

	// After the TTL the next lookup rebuilds.
	mr.FastForward(2 * time.Minute)
	_, err = svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	require.Equal(t, 2, api.listCalls)
}

func TestLookupUnknownNumber(t *testing.T) {
	svc, _ := testService(t, newFakeAPI())

	_, err := svc.Lookup(context.Background(), "ORD-9999-001")
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.Lookup(context.Background(), "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLookupWithoutRedis(t *testing.T) {
	api := newFakeAPI()
	svc := NewService(api, nil, time.Minute, nil)

	_, err := svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	require.Equal(t, 2, api.listCalls)
}

func TestWarmPopulatesInProgressOrders(t *testing.T) {
	api := newFakeAPI()
	svc, mr := testService(t, api)

	warmed, err := svc.Warm(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, warmed)
	require.True(t, mr.Exists("tracking:snapshot:ORD-2026-007"))
	require.False(t, mr.Exists("tracking:snapshot:ORD-2026-008"))

	// A lookup right after warmup is a pure cache hit.
	before := api.listCalls
	_, err = svc.Lookup(context.Background(), "ORD-2026-007")
	require.NoError(t, err)
	require.Equal(t, before, api.listCalls)
}
