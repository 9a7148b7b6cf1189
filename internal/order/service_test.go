package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zumar-garment/zumar-orderdesk/internal/platform/httpx"
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
	_ "github.com/zumar-garment/zumar-orderdesk/testing"
)

type fakeAPI struct {
	orders map[int64]*upstream.Order

	approveCalls    int
	rejectCalls     int
	completeCalls   int
	downPayCalls    int
	settlementCalls int
	priceUpdates    []upstream.OrderPriceUpdate
}

func newFakeAPI(status upstream.ApprovalStatus, payment upstream.PaymentStatus) *fakeAPI {
	return &fakeAPI{
		orders: map[int64]*upstream.Order{
			7: {ID: 7, Number: "ORD-2026-007", ApprovalStatus: status, PaymentStatus: payment},
		},
	}
}

func (f *fakeAPI) GetOrders(ctx context.Context, filter upstream.OrderFilter) ([]upstream.Order, error) {
	var out []upstream.Order
	for _, o := range f.orders {
		if filter.ApprovalStatus != nil && o.ApprovalStatus != *filter.ApprovalStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeAPI) GetOrder(ctx context.Context, orderID int64) (*upstream.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, &upstream.TransportError{Op: "get_order", Status: 404}
	}
	c := *o
	return &c, nil
}

func (f *fakeAPI) ApproveOrder(ctx context.Context, orderID int64) error {
	f.approveCalls++
	f.orders[orderID].ApprovalStatus = upstream.ApprovalInProgress
	return nil
}

func (f *fakeAPI) RejectOrder(ctx context.Context, orderID int64) error {
	f.rejectCalls++
	f.orders[orderID].ApprovalStatus = upstream.ApprovalRejected
	return nil
}

func (f *fakeAPI) CompleteOrder(ctx context.Context, orderID int64) error {
	f.completeCalls++
	f.orders[orderID].ApprovalStatus = upstream.ApprovalCompleted
	return nil
}

func (f *fakeAPI) SetOrderDownPayment(ctx context.Context, orderID int64) error {
	f.downPayCalls++
	f.orders[orderID].PaymentStatus = upstream.PaymentDownPayment
	return nil
}

func (f *fakeAPI) SetOrderSettlement(ctx context.Context, orderID int64) error {
	f.settlementCalls++
	f.orders[orderID].PaymentStatus = upstream.PaymentPaidInFull
	return nil
}

func (f *fakeAPI) UpdateOrderPrice(ctx context.Context, update upstream.OrderPriceUpdate) error {
	f.priceUpdates = append(f.priceUpdates, update)
	return nil
}

func TestApproveHappyPath(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalAwaitingConfirmation, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	order, err := svc.Approve(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.ApprovalInProgress, order.ApprovalStatus)
	require.Equal(t, 1, api.approveCalls)
}

func TestApproveGuardsState(t *testing.T) {
	for _, status := range []upstream.ApprovalStatus{
		upstream.ApprovalInProgress,
		upstream.ApprovalCompleted,
		upstream.ApprovalRejected,
	} {
		api := newFakeAPI(status, upstream.PaymentUnpaid)
		svc := NewService(api, nil)

		_, err := svc.Approve(context.Background(), 7)
		require.ErrorIs(t, err, httpx.ErrStateConflict)
		require.Zero(t, api.approveCalls)
	}
}

func TestRejectOnlyFromAwaiting(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalAwaitingConfirmation, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	order, err := svc.Reject(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.ApprovalRejected, order.ApprovalStatus)

	_, err = svc.Reject(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrStateConflict)
	require.Equal(t, 1, api.rejectCalls)
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalInProgress, upstream.PaymentPaidInFull)
	svc := NewService(api, nil)

	order, err := svc.Complete(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.ApprovalCompleted, order.ApprovalStatus)

	_, err = svc.Complete(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrStateConflict)
}

func TestPaymentTransitions(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalInProgress, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	order, err := svc.SetDownPayment(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.PaymentDownPayment, order.PaymentStatus)

	// A second down payment is not a thing.
	_, err = svc.SetDownPayment(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrStateConflict)

	order, err = svc.SetSettlement(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.PaymentPaidInFull, order.PaymentStatus)

	_, err = svc.SetSettlement(context.Background(), 7)
	require.ErrorIs(t, err, httpx.ErrStateConflict)
}

func TestSettlementStraightFromUnpaid(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalInProgress, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	order, err := svc.SetSettlement(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, upstream.PaymentPaidInFull, order.PaymentStatus)
	require.Zero(t, api.downPayCalls)
}

func TestUpdatePriceRequiresOrderID(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalInProgress, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	err := svc.UpdatePrice(context.Background(), upstream.OrderPriceUpdate{Price: 100})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, api.priceUpdates)

	err = svc.UpdatePrice(context.Background(), upstream.OrderPriceUpdate{OrderID: 7, Price: 100})
	require.NoError(t, err)
	require.Len(t, api.priceUpdates, 1)
}

func TestListPassesFilterThrough(t *testing.T) {
	api := newFakeAPI(upstream.ApprovalAwaitingConfirmation, upstream.PaymentUnpaid)
	svc := NewService(api, nil)

	status := upstream.ApprovalInProgress
	orders, err := svc.List(context.Background(), upstream.OrderFilter{ApprovalStatus: &status})
	require.NoError(t, err)
	require.Empty(t, orders)

	status = upstream.ApprovalAwaitingConfirmation
	orders, err = svc.List(context.Background(), upstream.OrderFilter{ApprovalStatus: &status})
	require.NoError(t, err)
	require.Len(t, orders, 1)
}
