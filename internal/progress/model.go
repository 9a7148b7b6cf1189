package progress

import (
	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// StageLabels are the twelve production stages in processing order, as
// upstream names them. Used as a display fallback when a stage record
// arrives without opmName.
var StageLabels = [12]string{
	"POTONG",        // cut
	"BORDIR",        // embroidery
	"JAHIT",         // sew
	"QC",            // quality control
	"LB KANCING",    // button hole
	"PS KANCING",    // button attach
	"BERSIH BENANG", // thread trim
	"IRONING",       // iron
	"FOLDING",       // fold
	"POLYBAG",       // polybag
	"KODIFIKASI",    // codify
	"KIRIM",         // ship
}

// StageLabel returns the stage's own name, falling back to the fixed
// catalogue by position.
func StageLabel(main upstream.ProgressMain, position int) string {
	if main.Name != "" {
		return main.Name
	}
	if position >= 0 && position < len(StageLabels) {
		return StageLabels[position]
	}
	return "-"
}

// Tree is the derived, hierarchical progress view of one order. The
// aggregator owns the canonical copy; readers get snapshots.
type Tree struct {
	Order         *upstream.Order
	ItemSizes     []upstream.OrderItemSize
	Mains         []upstream.ProgressMain
	ItemsByMain   map[int64][]upstream.ProgressItem
	DetailsByItem map[int64][]upstream.ProgressDetail

	// BranchErrors holds recoverable per-stage load failures keyed by
	// main id. A failed branch stays empty; the rest of the tree loads.
	BranchErrors map[int64]string
}

// clone copies the tree so callers can read without holding the
// aggregator's lock. Record slices are shared, maps are not.
func (t *Tree) clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		Order:         t.Order,
		ItemSizes:     t.ItemSizes,
		Mains:         t.Mains,
		ItemsByMain:   make(map[int64][]upstream.ProgressItem, len(t.ItemsByMain)),
		DetailsByItem: make(map[int64][]upstream.ProgressDetail, len(t.DetailsByItem)),
		BranchErrors:  make(map[int64]string, len(t.BranchErrors)),
	}
	for k, v := range t.ItemsByMain {
		out.ItemsByMain[k] = v
	}
	for k, v := range t.DetailsByItem {
		out.DetailsByItem[k] = v
	}
	for k, v := range t.BranchErrors {
		out.BranchErrors[k] = v
	}
	return out
}

// flattenItemSizes is the degraded-mode fallback: when the dedicated
// item-size endpoint answers empty, the order's embedded items carry
// the same reference data.
func flattenItemSizes(order *upstream.Order) []upstream.OrderItemSize {
	if order == nil {
		return nil
	}
	var out []upstream.OrderItemSize
	for _, item := range order.Items {
		for _, size := range item.Sizes {
			s := size
			if s.ProductID == 0 {
				s.ProductID = item.ProductID
			}
			if s.ProductName == "" {
				s.ProductName = item.ProductName
			}
			out = append(out, s)
		}
	}
	return out
}
