package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ApprovalStatus mirrors the numeric approval codes of the garment API.
type ApprovalStatus int

const (
	ApprovalAwaitingConfirmation ApprovalStatus = 1
	ApprovalInProgress           ApprovalStatus = 2
	ApprovalCompleted            ApprovalStatus = 3
	ApprovalRejected             ApprovalStatus = 4
)

// Label returns the Indonesian display label used across the back office.
func (s ApprovalStatus) Label() string {
	switch s {
	case ApprovalAwaitingConfirmation:
		return "Menunggu Konfirmasi"
	case ApprovalInProgress:
		return "Order Dibuat/Diproses"
	case ApprovalCompleted:
		return "Order Selesai"
	case ApprovalRejected:
		return "Order Ditolak"
	default:
		return "Status Tidak Diketahui"
	}
}

// PaymentStatus mirrors the numeric payment codes of the garment API.
type PaymentStatus int

const (
	PaymentUnpaid      PaymentStatus = 0
	PaymentDownPayment PaymentStatus = 1
	PaymentPaidInFull  PaymentStatus = 2
)

// Label returns the Indonesian display label.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentUnpaid:
		return "Belum Bayar"
	case PaymentDownPayment:
		return "Down Payment"
	case PaymentPaidInFull:
		return "Lunas"
	default:
		return "-"
	}
}

// Order is the upstream order record. Optional timestamps stay pointers
// so an absent field decodes to nil instead of a zero time.
type Order struct {
	ID             int64          `json:"oId"`
	Number         string         `json:"oNumber"`
	PoNumber       string         `json:"oPoNumber"`
	Name           string         `json:"oName"`
	Phone          string         `json:"oPhone"`
	Address        string         `json:"oAddress"`
	ApprovalStatus ApprovalStatus `json:"oApprovalStatus"`
	PaymentStatus  PaymentStatus  `json:"oStatusPayment"`
	DeadlineAt     *time.Time     `json:"oDeadlineAt"`
	Price          float64        `json:"oPrice"`
	DownPayment    float64        `json:"oDownPayment"`
	Paid           float64        `json:"oPaid"`
	TotalAmount    int            `json:"oTotalAmount"`
	Notes          string         `json:"oNotes"`
	Items          []OrderItem    `json:"oItems"`
}

// OrderItem is a catalogue product line embedded in an order.
type OrderItem struct {
	ProductID   int64           `json:"cpId"`
	ProductName string          `json:"cpName"`
	MockupImage string          `json:"oiMockupImage"`
	Sizes       []OrderItemSize `json:"oiSizes"`
}

// OrderItemSize identifies one (product, size) line with its ordered
// quantity. Read-only reference data for progress creation.
type OrderItemSize struct {
	ID          int64  `json:"oisId"`
	ProductID   int64  `json:"cpId"`
	ProductName string `json:"cpName"`
	SizeName    string `json:"sName"`
	Amount      int    `json:"oisAmount"`
}

// OrderFilter narrows the order list.
type OrderFilter struct {
	ApprovalStatus *ApprovalStatus
	Number         string
	Page           int
	Limit          int
}

// GetOrders lists orders for the back office.
func (c *Client) GetOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	q := url.Values{}
	if filter.ApprovalStatus != nil {
		q.Set("filterOApprovalStatus", strconv.Itoa(int(*filter.ApprovalStatus)))
	}
	if filter.Number != "" {
		q.Set("filterONumber", filter.Number)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/api/order"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	raw, err := c.get(ctx, "get_orders", path)
	if err != nil {
		return nil, err
	}
	return DecodeList[Order](raw)
}

// GetOrder fetches one order with its embedded item list.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	raw, err := c.get(ctx, "get_order", fmt.Sprintf("/api/order/%d", orderID))
	if err != nil {
		return nil, err
	}
	order, err := DecodeRecord[Order](raw)
	if err != nil {
		return nil, &TransportError{Op: "get_order", Err: err}
	}
	return order, nil
}

// GetOrderItemSizes fetches the flat (product, size, quantity) list for
// an order. May legitimately answer empty; callers fall back to the
// order's embedded items.
func (c *Client) GetOrderItemSizes(ctx context.Context, orderID int64) ([]OrderItemSize, error) {
	raw, err := c.get(ctx, "get_order_item_sizes", fmt.Sprintf("/api/order/%d/item-sizes", orderID))
	if err != nil {
		return nil, err
	}
	return DecodeList[OrderItemSize](raw)
}

// ApproveOrder asks upstream to move the order into production. The
// server creates the twelve progress stages as part of approval.
func (c *Client) ApproveOrder(ctx context.Context, orderID int64) error {
	_, err := c.send(ctx, "approve_order", "PUT", fmt.Sprintf("/api/order/%d/approve", orderID), nil)
	return err
}

// CompleteOrder marks the order finished.
func (c *Client) CompleteOrder(ctx context.Context, orderID int64) error {
	_, err := c.send(ctx, "complete_order", "PUT", fmt.Sprintf("/api/order/%d/complete", orderID), nil)
	return err
}

// RejectOrder marks the order rejected.
func (c *Client) RejectOrder(ctx context.Context, orderID int64) error {
	_, err := c.send(ctx, "reject_order", "PUT", fmt.Sprintf("/api/order/%d/reject", orderID), nil)
	return err
}

// SetOrderDownPayment records a down payment upstream.
func (c *Client) SetOrderDownPayment(ctx context.Context, orderID int64) error {
	_, err := c.send(ctx, "set_down_payment", "PUT", fmt.Sprintf("/api/order/%d/payment/down-payment", orderID), nil)
	return err
}

// SetOrderSettlement marks the order paid in full upstream.
func (c *Client) SetOrderSettlement(ctx context.Context, orderID int64) error {
	_, err := c.send(ctx, "set_settlement", "PUT", fmt.Sprintf("/api/order/%d/payment/settlement", orderID), nil)
	return err
}

// OrderPriceUpdate carries the server-computed costing figures back to
// the order record. All amounts originate upstream (RAB summary); this
// client never derives them.
type OrderPriceUpdate struct {
	OrderID         int64   `json:"oId"`
	Price           float64 `json:"oPrice"`
	DownPayment     float64 `json:"oDownPayment"`
	Paid            float64 `json:"oPaid"`
	Cogs            float64 `json:"oCogs"`
	Margin          float64 `json:"oMargin"`
	ProfitRemaining float64 `json:"oProfitRemaining"`
	Marketing       float64 `json:"oMarketing"`
	Incentive       float64 `json:"oIncentive"`
	MainDevelop     float64 `json:"oMainDevelop"`
}

// UpdateOrderPrice pushes a price update upstream.
func (c *Client) UpdateOrderPrice(ctx context.Context, update OrderPriceUpdate) error {
	_, err := c.send(ctx, "update_order_price", "PUT", "/api/order/price", update)
	return err
}
