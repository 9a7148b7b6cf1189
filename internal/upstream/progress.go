package upstream

import (
	"context"
	"fmt"
	"time"
)

// ProgressMain is one production stage of an order. Created server-side
// when the order is approved; this client never creates these.
// AmountTotal and AmountTotalDone are server-maintained aggregates.
type ProgressMain struct {
	ID              int64  `json:"opmId"`
	OrderID         int64  `json:"oId"`
	Name            string `json:"opmName"`
	AmountTotal     int    `json:"opmAmountTotal"`
	AmountTotalDone int    `json:"opmAmountTotalDone"`
}

// ProgressItem is a worker's assigned slice of one stage for one
// order-item-size.
type ProgressItem struct {
	ID              int64      `json:"opId"`
	MainID          int64      `json:"opmId"`
	OrderItemSizeID int64      `json:"oisId"`
	WorkerID        string     `json:"uId"`
	WorkerName      string     `json:"uName"`
	Amount          int        `json:"opAmount"`
	DeadlineAt      *time.Time `json:"opDeadlineAt"`
}

// ProgressDetail records a finished quantity logged against a progress
// item.
type ProgressDetail struct {
	ID         int64      `json:"opdId"`
	ProgressID int64      `json:"opId"`
	Amount     int        `json:"opdAmount"`
	FinishedAt *time.Time `json:"opdFinishedAt"`
}

// GetProgressMains lists the production stages of an order.
func (c *Client) GetProgressMains(ctx context.Context, orderID int64) ([]ProgressMain, error) {
	raw, err := c.get(ctx, "get_progress_mains", fmt.Sprintf("/api/order/%d/progress/main", orderID))
	if err != nil {
		return nil, err
	}
	return DecodeList[ProgressMain](raw)
}

// GetProgressItems lists the worker assignments of one stage.
func (c *Client) GetProgressItems(ctx context.Context, mainID int64) ([]ProgressItem, error) {
	raw, err := c.get(ctx, "get_progress_items", fmt.Sprintf("/api/order/progress/main/%d/items", mainID))
	if err != nil {
		return nil, err
	}
	return DecodeList[ProgressItem](raw)
}

// GetProgressDetails lists the finished entries of one assignment.
func (c *Client) GetProgressDetails(ctx context.Context, itemID int64) ([]ProgressDetail, error) {
	raw, err := c.get(ctx, "get_progress_details", fmt.Sprintf("/api/order/progress/%d/details", itemID))
	if err != nil {
		return nil, err
	}
	return DecodeList[ProgressDetail](raw)
}

// ProgressItemSpec is one assignment in a batched create call.
type ProgressItemSpec struct {
	OrderItemSizeID int64     `json:"oisId"`
	WorkerID        string    `json:"uId"`
	Amount          int       `json:"opAmount"`
	DeadlineAt      time.Time `json:"opDeadlineAt"`
}

type createProgressPayload struct {
	MainID int64              `json:"opmId"`
	Items  []ProgressItemSpec `json:"opItems"`
}

// CreateProgressItems creates one or more assignments under a stage in
// a single batched call.
func (c *Client) CreateProgressItems(ctx context.Context, mainID int64, items []ProgressItemSpec) error {
	_, err := c.send(ctx, "create_progress_items", "POST", "/api/order/progress",
		createProgressPayload{MainID: mainID, Items: items})
	return err
}

// DeleteProgressItem removes one assignment.
func (c *Client) DeleteProgressItem(ctx context.Context, itemID int64) error {
	_, err := c.send(ctx, "delete_progress_item", "DELETE", fmt.Sprintf("/api/order/progress/%d", itemID), nil)
	return err
}

// ProgressDetailSpec is one finished entry in a batched create call.
type ProgressDetailSpec struct {
	Amount     int       `json:"opdAmount"`
	FinishedAt time.Time `json:"opdFinishedAt"`
}

type createProgressDetailPayload struct {
	ProgressID int64                `json:"opId"`
	Items      []ProgressDetailSpec `json:"opdItems"`
}

// CreateProgressDetails logs finished quantities against an assignment.
func (c *Client) CreateProgressDetails(ctx context.Context, itemID int64, details []ProgressDetailSpec) error {
	_, err := c.send(ctx, "create_progress_details", "POST", "/api/order/progress/detail",
		createProgressDetailPayload{ProgressID: itemID, Items: details})
	return err
}

// ProgressDetailUpdate identifies an existing finished entry to rewrite.
type ProgressDetailUpdate struct {
	ID         int64     `json:"opdId"`
	Amount     int       `json:"opdAmount"`
	FinishedAt time.Time `json:"opdFinishedAt"`
}

type updateProgressDetailPayload struct {
	Items []ProgressDetailUpdate `json:"opdItems"`
}

// UpdateProgressDetails rewrites finished entries in one call.
func (c *Client) UpdateProgressDetails(ctx context.Context, details []ProgressDetailUpdate) error {
	_, err := c.send(ctx, "update_progress_details", "PUT", "/api/order/progress/detail",
		updateProgressDetailPayload{Items: details})
	return err
}

// DeleteProgressDetail removes one finished entry.
func (c *Client) DeleteProgressDetail(ctx context.Context, detailID int64) error {
	_, err := c.send(ctx, "delete_progress_detail", "DELETE", fmt.Sprintf("/api/order/progress/detail/%d", detailID), nil)
	return err
}
