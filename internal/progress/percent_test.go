package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

func TestPercentageRoundsAndClamps(t *testing.T) {
	cases := []struct {
		name     string
		finished int
		target   int
		want     int
	}{
		{"quarter", 30, 120, 25},
		{"rounds half up", 1, 8, 13},
		{"thirds round down", 1, 3, 33},
		{"thirds round up", 2, 3, 67},
		{"exact", 50, 100, 50},
		{"overshoot clamps", 121, 120, 100},
		{"zero target", 40, 0, 0},
		{"negative target", 40, -1, 0},
		{"negative finished clamps", -5, 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, percentage(tc.finished, tc.target))
		})
	}
}

func TestMainPercentageSumsAllItems(t *testing.T) {
	main := upstream.ProgressMain{ID: 1, AmountTotal: 100}
	items := []upstream.ProgressItem{{ID: 10, Amount: 60}, {ID: 11, Amount: 40}}
	details := map[int64][]upstream.ProgressDetail{
		10: {{Amount: 30}, {Amount: 10}},
		11: {{Amount: 10}},
	}
	require.Equal(t, 50, MainPercentage(main, items, details))
}

func TestItemPercentage(t *testing.T) {
	item := upstream.ProgressItem{ID: 10, Amount: 40}
	require.Equal(t, 0, ItemPercentage(item, nil))
	require.Equal(t, 100, ItemPercentage(item, []upstream.ProgressDetail{{Amount: 40}}))
}

func TestStageLabelFallback(t *testing.T) {
	require.Equal(t, "JAHIT CELANA", StageLabel(upstream.ProgressMain{Name: "JAHIT CELANA"}, 0))
	require.Equal(t, "POTONG", StageLabel(upstream.ProgressMain{}, 0))
	require.Equal(t, "KIRIM", StageLabel(upstream.ProgressMain{}, 11))
	require.Equal(t, "-", StageLabel(upstream.ProgressMain{}, 12))
}
