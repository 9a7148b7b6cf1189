// Package progress maintains the derived Order → stage → assignment →
// finished-entry view of one order's production progress. All
// authoritative aggregates live upstream; this package fetches,
// validates pre-submission invariants, and re-reads after writes.
package progress

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// API is the slice of the upstream client the aggregator depends on.
type API interface {
	GetOrder(ctx context.Context, orderID int64) (*upstream.Order, error)
	GetOrderItemSizes(ctx context.Context, orderID int64) ([]upstream.OrderItemSize, error)
	GetProgressMains(ctx context.Context, orderID int64) ([]upstream.ProgressMain, error)
	GetProgressItems(ctx context.Context, mainID int64) ([]upstream.ProgressItem, error)
	GetProgressDetails(ctx context.Context, itemID int64) ([]upstream.ProgressDetail, error)
	CreateProgressItems(ctx context.Context, mainID int64, items []upstream.ProgressItemSpec) error
	DeleteProgressItem(ctx context.Context, itemID int64) error
	CreateProgressDetails(ctx context.Context, itemID int64, details []upstream.ProgressDetailSpec) error
	UpdateProgressDetails(ctx context.Context, details []upstream.ProgressDetailUpdate) error
	DeleteProgressDetail(ctx context.Context, detailID int64) error
}

// SettlePolicy is the wait inserted between a write and its read-back.
// The upstream system is eventually consistent after writes; the fixed
// delay is a practical mitigation for read-after-write lag, not a
// correctness guarantee.
type SettlePolicy struct {
	Delay time.Duration
}

func (p SettlePolicy) wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fetchConcurrency bounds the per-stage fan-out during a tree load.
const fetchConcurrency = 4

// Aggregator owns the cached progress tree for one order. There is one
// logical writer; mutations are serialized by an in-flight guard and
// every cache update is a whole-subtree replace, never an incremental
// patch.
type Aggregator struct {
	api     API
	logger  *slog.Logger
	settle  SettlePolicy
	orderID int64

	now func() time.Time

	busy atomic.Bool

	mu   sync.Mutex
	tree *Tree
}

// NewAggregator constructs an aggregator for one order.
func NewAggregator(api API, orderID int64, settle SettlePolicy, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		api:     api,
		logger:  logger,
		settle:  settle,
		orderID: orderID,
		now:     time.Now,
	}
}

// Snapshot returns the current cached tree, or nil before the first
// successful load.
func (a *Aggregator) Snapshot() *Tree {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree.clone()
}

// LoadTree fetches the full progress tree and replaces the cache. Stage
// branches load concurrently; a failure inside one branch leaves that
// branch empty with a recorded warning and does not abort the others.
func (a *Aggregator) LoadTree(ctx context.Context) (*Tree, error) {
	tree := &Tree{
		ItemsByMain:   make(map[int64][]upstream.ProgressItem),
		DetailsByItem: make(map[int64][]upstream.ProgressDetail),
		BranchErrors:  make(map[int64]string),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		order, err := a.api.GetOrder(gctx, a.orderID)
		if err != nil {
			return err
		}
		tree.Order = order
		return nil
	})
	var sizesErr error
	g.Go(func() error {
		sizes, err := a.api.GetOrderItemSizes(gctx, a.orderID)
		if err != nil {
			// Degraded mode: the embedded item list covers this.
			sizesErr = err
			return nil
		}
		tree.ItemSizes = sizes
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(tree.ItemSizes) == 0 {
		if sizesErr != nil {
			a.logger.Warn("item sizes unavailable, using embedded items",
				slog.Int64("order_id", a.orderID), slog.Any("error", sizesErr))
		}
		tree.ItemSizes = flattenItemSizes(tree.Order)
	}

	mains, err := a.api.GetProgressMains(ctx, a.orderID)
	if err != nil {
		// An order awaiting approval has no stages yet; the rest of the
		// view is still worth rendering.
		a.logger.Warn("progress mains unavailable",
			slog.Int64("order_id", a.orderID), slog.Any("error", err))
		mains = nil
	}
	tree.Mains = mains

	a.loadBranches(ctx, tree, mains)

	a.mu.Lock()
	a.tree = tree
	a.mu.Unlock()
	return tree.clone(), nil
}

// loadBranches fills ItemsByMain and DetailsByItem for the given
// stages. Completion order between branches is unspecified; each branch
// writes only its own keys, under a shared lock.
func (a *Aggregator) loadBranches(ctx context.Context, tree *Tree, mains []upstream.ProgressMain) {
	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(fetchConcurrency)

	for _, main := range mains {
		main := main
		g.Go(func() error {
			items, details, err := a.loadBranch(ctx, main.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tree.BranchErrors[main.ID] = err.Error()
				return nil
			}
			tree.ItemsByMain[main.ID] = items
			for itemID, d := range details {
				tree.DetailsByItem[itemID] = d
			}
			return nil
		})
	}
	_ = g.Wait()
}

// loadBranch fetches one stage's assignments and, per assignment, its
// finished entries. An item is only considered loaded once its own
// detail fetch finished; any failure empties the whole branch.
func (a *Aggregator) loadBranch(ctx context.Context, mainID int64) ([]upstream.ProgressItem, map[int64][]upstream.ProgressDetail, error) {
	items, err := a.api.GetProgressItems(ctx, mainID)
	if err != nil {
		return nil, nil, err
	}

	details := make(map[int64][]upstream.ProgressDetail, len(items))
	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(fetchConcurrency)
	for _, item := range items {
		item := item
		g.Go(func() error {
			d, err := a.api.GetProgressDetails(ctx, item.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			details[item.ID] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, details, nil
}

// AddItemInput describes one new worker assignment.
type AddItemInput struct {
	MainID          int64
	OrderItemSizeID int64
	WorkerID        string
	Amount          int
	DeadlineAt      time.Time
}

// AddProgressItem validates the assignment against the cached tree,
// issues a single batched create with exactly one spec, waits out the
// settle delay, and replaces the affected stage's cached item list.
// Nothing is committed to the cache until the read-back confirms it.
func (a *Aggregator) AddProgressItem(ctx context.Context, input AddItemInput) error {
	if !a.busy.CompareAndSwap(false, true) {
		return busyError{}
	}
	defer a.busy.Store(false)

	if err := a.validateAddItem(input); err != nil {
		return err
	}

	spec := upstream.ProgressItemSpec{
		OrderItemSizeID: input.OrderItemSizeID,
		WorkerID:        input.WorkerID,
		Amount:          input.Amount,
		DeadlineAt:      input.DeadlineAt,
	}
	if err := a.api.CreateProgressItems(ctx, input.MainID, []upstream.ProgressItemSpec{spec}); err != nil {
		return err
	}

	if err := a.settle.wait(ctx); err != nil {
		return err
	}
	return a.refreshMainBranch(ctx, input.MainID)
}

func (a *Aggregator) validateAddItem(input AddItemInput) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tree := a.tree
	if tree == nil || tree.Order == nil {
		return &StateError{Msg: "data pesanan belum dimuat"}
	}
	if tree.Order.ApprovalStatus != upstream.ApprovalInProgress {
		return &StateError{Msg: "order harus berstatus \"Order Dibuat/Diproses\" untuk menambah progress"}
	}
	if input.MainID == 0 || input.OrderItemSizeID == 0 || input.WorkerID == "" || input.Amount <= 0 || input.DeadlineAt.IsZero() {
		return validationf("mohon lengkapi semua field yang required")
	}

	var size *upstream.OrderItemSize
	for i := range tree.ItemSizes {
		if tree.ItemSizes[i].ID == input.OrderItemSizeID {
			size = &tree.ItemSizes[i]
			break
		}
	}
	if size == nil {
		return validationf("item yang dipilih tidak valid")
	}

	// Allocation is bounded per stage: every stage processes the full
	// ordered quantity, so the sum of assignments for this item size
	// within this stage may not exceed what was ordered.
	allocated := 0
	for _, item := range tree.ItemsByMain[input.MainID] {
		if item.OrderItemSizeID == input.OrderItemSizeID {
			allocated += item.Amount
		}
	}
	if remaining := size.Amount - allocated; input.Amount > remaining {
		return validationf("jumlah melebihi sisa yang tersedia (" + itoa(remaining) + " pcs)")
	}

	now := a.now()
	if input.DeadlineAt.Before(now) {
		return validationf("deadline tidak boleh di masa lalu")
	}
	if tree.Order.DeadlineAt != nil && input.DeadlineAt.After(*tree.Order.DeadlineAt) {
		return validationf("deadline progress tidak boleh melewati deadline order")
	}
	return nil
}

// DeleteProgressItem removes one assignment and performs a conservative
// full-subtree refresh, because deleting an assignment changes its
// stage's server-side aggregates. Interactive confirmation is the
// caller's responsibility.
func (a *Aggregator) DeleteProgressItem(ctx context.Context, itemID int64) error {
	if !a.busy.CompareAndSwap(false, true) {
		return busyError{}
	}
	defer a.busy.Store(false)

	if err := a.api.DeleteProgressItem(ctx, itemID); err != nil {
		return err
	}

	mains, err := a.api.GetProgressMains(ctx, a.orderID)
	if err != nil {
		return err
	}

	refreshed := &Tree{
		ItemsByMain:   make(map[int64][]upstream.ProgressItem),
		DetailsByItem: make(map[int64][]upstream.ProgressDetail),
		BranchErrors:  make(map[int64]string),
	}
	refreshed.Mains = mains
	a.loadBranches(ctx, refreshed, mains)

	a.mu.Lock()
	if a.tree != nil {
		refreshed.Order = a.tree.Order
		refreshed.ItemSizes = a.tree.ItemSizes
	}
	a.tree = refreshed
	a.mu.Unlock()
	return nil
}

// DetailInput describes one finished entry.
type DetailInput struct {
	Amount     int
	FinishedAt time.Time
}

// AddProgressDetail logs a finished quantity against an assignment,
// then refreshes only that assignment's detail list and its stage's
// item list; sibling stages are untouched.
func (a *Aggregator) AddProgressDetail(ctx context.Context, itemID int64, input DetailInput) error {
	if !a.busy.CompareAndSwap(false, true) {
		return busyError{}
	}
	defer a.busy.Store(false)

	mainID, err := a.validateAddDetail(itemID, input)
	if err != nil {
		return err
	}

	spec := upstream.ProgressDetailSpec{Amount: input.Amount, FinishedAt: input.FinishedAt}
	if err := a.api.CreateProgressDetails(ctx, itemID, []upstream.ProgressDetailSpec{spec}); err != nil {
		return err
	}

	if err := a.settle.wait(ctx); err != nil {
		return err
	}
	return a.refreshItemBranch(ctx, mainID, itemID)
}

func (a *Aggregator) validateAddDetail(itemID int64, input DetailInput) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tree := a.tree
	if tree == nil || tree.Order == nil {
		return 0, &StateError{Msg: "data pesanan belum dimuat"}
	}
	if tree.Order.ApprovalStatus != upstream.ApprovalInProgress {
		return 0, &StateError{Msg: "order harus berstatus \"Order Dibuat/Diproses\" untuk menambah finished item"}
	}
	if input.Amount <= 0 || input.FinishedAt.IsZero() {
		return 0, validationf("mohon lengkapi semua field yang required")
	}

	item, mainID := findItem(tree, itemID)
	if item == nil {
		return 0, validationf("progress tidak ditemukan")
	}

	finished := finishedTotal(tree.DetailsByItem[itemID])
	if remaining := item.Amount - finished; input.Amount > remaining {
		return 0, validationf("jumlah melebihi sisa yang tersedia (" + itoa(remaining) + " pcs)")
	}

	now := a.now()
	if input.FinishedAt.After(now) {
		return 0, validationf("tanggal selesai tidak boleh di masa depan")
	}
	if item.DeadlineAt != nil && input.FinishedAt.After(*item.DeadlineAt) {
		return 0, validationf("tanggal selesai tidak boleh melewati deadline progress")
	}
	return mainID, nil
}

// EditProgressDetail rewrites one finished entry, with the same
// invariants as adding, counting the entry's previous amount as freed.
func (a *Aggregator) EditProgressDetail(ctx context.Context, detailID int64, input DetailInput) error {
	if !a.busy.CompareAndSwap(false, true) {
		return busyError{}
	}
	defer a.busy.Store(false)

	itemID, mainID, err := a.validateEditDetail(detailID, input)
	if err != nil {
		return err
	}

	update := upstream.ProgressDetailUpdate{ID: detailID, Amount: input.Amount, FinishedAt: input.FinishedAt}
	if err := a.api.UpdateProgressDetails(ctx, []upstream.ProgressDetailUpdate{update}); err != nil {
		return err
	}

	if err := a.settle.wait(ctx); err != nil {
		return err
	}
	return a.refreshItemBranch(ctx, mainID, itemID)
}

func (a *Aggregator) validateEditDetail(detailID int64, input DetailInput) (int64, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tree := a.tree
	if tree == nil || tree.Order == nil {
		return 0, 0, &StateError{Msg: "data pesanan belum dimuat"}
	}
	if tree.Order.ApprovalStatus != upstream.ApprovalInProgress {
		return 0, 0, &StateError{Msg: "order harus berstatus \"Order Dibuat/Diproses\" untuk mengubah finished item"}
	}
	if input.Amount <= 0 || input.FinishedAt.IsZero() {
		return 0, 0, validationf("mohon lengkapi semua field yang required")
	}

	itemID, prevAmount := findDetail(tree, detailID)
	if itemID == 0 {
		return 0, 0, validationf("finished item tidak ditemukan")
	}
	item, mainID := findItem(tree, itemID)
	if item == nil {
		return 0, 0, validationf("progress tidak ditemukan")
	}

	finished := finishedTotal(tree.DetailsByItem[itemID]) - prevAmount
	if remaining := item.Amount - finished; input.Amount > remaining {
		return 0, 0, validationf("jumlah melebihi sisa yang tersedia (" + itoa(remaining) + " pcs)")
	}

	now := a.now()
	if input.FinishedAt.After(now) {
		return 0, 0, validationf("tanggal selesai tidak boleh di masa depan")
	}
	if item.DeadlineAt != nil && input.FinishedAt.After(*item.DeadlineAt) {
		return 0, 0, validationf("tanggal selesai tidak boleh melewati deadline progress")
	}
	return itemID, mainID, nil
}

// DeleteProgressDetail removes one finished entry and refreshes the
// owning assignment's branch.
func (a *Aggregator) DeleteProgressDetail(ctx context.Context, detailID int64) error {
	if !a.busy.CompareAndSwap(false, true) {
		return busyError{}
	}
	defer a.busy.Store(false)

	a.mu.Lock()
	tree := a.tree
	var itemID, mainID int64
	if tree != nil {
		if tree.Order == nil || tree.Order.ApprovalStatus != upstream.ApprovalInProgress {
			a.mu.Unlock()
			return &StateError{Msg: "order harus berstatus \"Order Dibuat/Diproses\" untuk menghapus finished item"}
		}
		itemID, _ = findDetail(tree, detailID)
		if itemID != 0 {
			if item, mID := findItem(tree, itemID); item != nil {
				mainID = mID
			}
		}
	}
	a.mu.Unlock()
	if itemID == 0 {
		return validationf("finished item tidak ditemukan")
	}

	if err := a.api.DeleteProgressDetail(ctx, detailID); err != nil {
		return err
	}

	if err := a.settle.wait(ctx); err != nil {
		return err
	}
	return a.refreshItemBranch(ctx, mainID, itemID)
}

// refreshMainBranch re-reads the stage list (server aggregates moved)
// and the affected stage's assignments, then whole-replaces both in the
// cache.
func (a *Aggregator) refreshMainBranch(ctx context.Context, mainID int64) error {
	mains, err := a.api.GetProgressMains(ctx, a.orderID)
	if err != nil {
		return err
	}
	items, err := a.api.GetProgressItems(ctx, mainID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tree == nil {
		return &StateError{Msg: "data pesanan belum dimuat"}
	}
	a.tree.Mains = mains
	a.tree.ItemsByMain[mainID] = items
	delete(a.tree.BranchErrors, mainID)
	return nil
}

// refreshItemBranch re-reads the stage list, the stage's assignments,
// and the assignment's finished entries.
func (a *Aggregator) refreshItemBranch(ctx context.Context, mainID, itemID int64) error {
	mains, err := a.api.GetProgressMains(ctx, a.orderID)
	if err != nil {
		return err
	}
	items, err := a.api.GetProgressItems(ctx, mainID)
	if err != nil {
		return err
	}
	details, err := a.api.GetProgressDetails(ctx, itemID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tree == nil {
		return &StateError{Msg: "data pesanan belum dimuat"}
	}
	a.tree.Mains = mains
	a.tree.ItemsByMain[mainID] = items
	a.tree.DetailsByItem[itemID] = details
	return nil
}

func findItem(tree *Tree, itemID int64) (*upstream.ProgressItem, int64) {
	for mainID, items := range tree.ItemsByMain {
		for i := range items {
			if items[i].ID == itemID {
				return &items[i], mainID
			}
		}
	}
	return nil, 0
}

func findDetail(tree *Tree, detailID int64) (itemID int64, amount int) {
	for id, details := range tree.DetailsByItem {
		for _, d := range details {
			if d.ID == detailID {
				return id, d.Amount
			}
		}
	}
	return 0, 0
}

func itoa(v int) string {
	if v < 0 {
		v = 0
	}
	return strconv.Itoa(v)
}
