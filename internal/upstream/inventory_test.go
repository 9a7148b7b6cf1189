package upstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInventoryDisplayName(t *testing.T) {
	require.Equal(t, "Drill 28s", Inventory{ID: 1, SizeName: "Drill 28s", Code: "KAIN-DRILL"}.DisplayName())
	require.Equal(t, "KAIN-DRILL", Inventory{ID: 1, Code: "KAIN-DRILL", Description: "kain drill"}.DisplayName())
	require.Equal(t, "kain drill", Inventory{ID: 1, Description: "kain drill"}.DisplayName())
	require.Equal(t, "1", Inventory{ID: 1}.DisplayName())
}
