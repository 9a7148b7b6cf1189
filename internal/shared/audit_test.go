package shared

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionTrailRecentNewestFirst(t *testing.T) {
	trail := NewActionTrail(nil, 16)
	trail.Record("order", "approve", "7")
	trail.Record("progress", "add_item", "7")

	recent := trail.Recent(10)
	require.Len(t, recent, 2)
	require.Equal(t, "add_item", recent[0].Action)
	require.Equal(t, "approve", recent[1].Action)
	require.NotEqual(t, recent[0].ID, recent[1].ID)
}

func TestActionTrailKeepsBoundedRing(t *testing.T) {
	trail := NewActionTrail(nil, 3)
	for i := 0; i < 5; i++ {
		trail.Record("order", "approve", strconv.Itoa(i))
	}

	recent := trail.Recent(10)
	require.Len(t, recent, 3)
	require.Equal(t, "4", recent[0].Ref)
	require.Equal(t, "2", recent[2].Ref)
}

func TestActionTrailNilReceiver(t *testing.T) {
	var trail *ActionTrail
	trail.Record("order", "approve", "7")
	require.Nil(t, trail.Recent(5))
}
