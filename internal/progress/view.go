package progress

import "time"

// TreeView is the JSON shape the admin edit-order page renders.
// Percentages are derived here from the cached tree; the totals inside
// come from upstream untouched.
type TreeView struct {
	Order      OrderView      `json:"order"`
	ItemSizes  []ItemSizeView `json:"itemSizes"`
	Stages     []StageView    `json:"stages"`
	Warnings   []string       `json:"warnings,omitempty"`
	Percentage int            `json:"percentage"`
}

type OrderView struct {
	ID                  int64      `json:"id"`
	Number              string     `json:"number"`
	PoNumber            string     `json:"poNumber"`
	Name                string     `json:"name"`
	ApprovalStatus      int        `json:"approvalStatus"`
	ApprovalStatusLabel string     `json:"approvalStatusLabel"`
	PaymentStatus       int        `json:"paymentStatus"`
	PaymentStatusLabel  string     `json:"paymentStatusLabel"`
	DeadlineAt          *time.Time `json:"deadlineAt"`
	Price               float64    `json:"price"`
	Notes               string     `json:"notes"`
}

type ItemSizeView struct {
	ID          int64  `json:"id"`
	ProductName string `json:"productName"`
	SizeName    string `json:"sizeName"`
	Amount      int    `json:"amount"`
	Remaining   int    `json:"remaining"`
}

type StageView struct {
	ID              int64      `json:"id"`
	Label           string     `json:"label"`
	AmountTotal     int        `json:"amountTotal"`
	AmountTotalDone int        `json:"amountTotalDone"`
	Percentage      int        `json:"percentage"`
	Items           []ItemView `json:"items"`
	LoadError       string     `json:"loadError,omitempty"`
}

type ItemView struct {
	ID         int64        `json:"id"`
	SizeID     int64        `json:"sizeId"`
	WorkerID   string       `json:"workerId"`
	WorkerName string       `json:"workerName"`
	Amount     int          `json:"amount"`
	DeadlineAt *time.Time   `json:"deadlineAt"`
	Percentage int          `json:"percentage"`
	Details    []DetailView `json:"details"`
}

type DetailView struct {
	ID         int64      `json:"id"`
	Amount     int        `json:"amount"`
	FinishedAt *time.Time `json:"finishedAt"`
}

// BuildView renders a snapshot into the page shape.
func BuildView(tree *Tree) TreeView {
	view := TreeView{}
	if tree == nil {
		return view
	}
	if tree.Order != nil {
		o := tree.Order
		view.Order = OrderView{
			ID:                  o.ID,
			Number:              o.Number,
			PoNumber:            o.PoNumber,
			Name:                o.Name,
			ApprovalStatus:      int(o.ApprovalStatus),
			ApprovalStatusLabel: o.ApprovalStatus.Label(),
			PaymentStatus:       int(o.PaymentStatus),
			PaymentStatusLabel:  o.PaymentStatus.Label(),
			DeadlineAt:          o.DeadlineAt,
			Price:               o.Price,
			Notes:               o.Notes,
		}
	}

	// Remaining is reported against the busiest stage so the add form
	// can cap its quantity input.
	maxAllocated := make(map[int64]int)
	for _, items := range tree.ItemsByMain {
		perSize := make(map[int64]int)
		for _, item := range items {
			perSize[item.OrderItemSizeID] += item.Amount
		}
		for sizeID, allocated := range perSize {
			if allocated > maxAllocated[sizeID] {
				maxAllocated[sizeID] = allocated
			}
		}
	}
	for _, size := range tree.ItemSizes {
		remaining := size.Amount - maxAllocated[size.ID]
		if remaining < 0 {
			remaining = 0
		}
		label := size.ProductName
		view.ItemSizes = append(view.ItemSizes, ItemSizeView{
			ID:          size.ID,
			ProductName: label,
			SizeName:    size.SizeName,
			Amount:      size.Amount,
			Remaining:   remaining,
		})
	}

	done := 0
	target := 0
	for pos, main := range tree.Mains {
		items := tree.ItemsByMain[main.ID]
		stage := StageView{
			ID:              main.ID,
			Label:           StageLabel(main, pos),
			AmountTotal:     main.AmountTotal,
			AmountTotalDone: main.AmountTotalDone,
			Percentage:      MainPercentage(main, items, tree.DetailsByItem),
			LoadError:       tree.BranchErrors[main.ID],
		}
		for _, item := range items {
			details := tree.DetailsByItem[item.ID]
			iv := ItemView{
				ID:         item.ID,
				SizeID:     item.OrderItemSizeID,
				WorkerID:   item.WorkerID,
				WorkerName: item.WorkerName,
				Amount:     item.Amount,
				DeadlineAt: item.DeadlineAt,
				Percentage: ItemPercentage(item, details),
			}
			for _, d := range details {
				iv.Details = append(iv.Details, DetailView{ID: d.ID, Amount: d.Amount, FinishedAt: d.FinishedAt})
			}
			stage.Items = append(stage.Items, iv)
		}
		view.Stages = append(view.Stages, stage)

		finished := 0
		for _, item := range items {
			finished += finishedTotal(tree.DetailsByItem[item.ID])
		}
		done += finished
		target += main.AmountTotal
	}
	view.Percentage = percentage(done, target)

	for _, msg := range tree.BranchErrors {
		view.Warnings = append(view.Warnings, msg)
	}
	return view
}
