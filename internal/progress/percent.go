package progress

import (
	"math"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// percentage rounds 100*finished/target and clamps to [0,100]. A zero
// target means the stage has nothing allocated yet and reads as 0.
func percentage(finished, target int) int {
	if target <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(finished) / float64(target)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Percent exposes the rounding rule to other packages so every surface
// reports the same figure for the same counts.
func Percent(finished, target int) int {
	return percentage(finished, target)
}

// MainPercentage derives a stage's completion from the finished entries
// of all its assignments, against the stage's target total.
func MainPercentage(main upstream.ProgressMain, items []upstream.ProgressItem, detailsByItem map[int64][]upstream.ProgressDetail) int {
	finished := 0
	for _, item := range items {
		finished += finishedTotal(detailsByItem[item.ID])
	}
	return percentage(finished, main.AmountTotal)
}

// ItemPercentage derives one assignment's completion against its
// allocated quantity.
func ItemPercentage(item upstream.ProgressItem, details []upstream.ProgressDetail) int {
	return percentage(finishedTotal(details), item.Amount)
}

func finishedTotal(details []upstream.ProgressDetail) int {
	total := 0
	for _, d := range details {
		total += d.Amount
	}
	return total
}
