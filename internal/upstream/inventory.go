package upstream

import (
	"context"
	"net/url"
	"strconv"
)

// Inventory is a raw-material record surfaced in the RAB material
// picker. Field names vary across upstream endpoints; Name falls back
// through the known variants.
type Inventory struct {
	ID          int64   `json:"iId"`
	Code        string  `json:"iCode"`
	Description string  `json:"iDescription"`
	SizeName    string  `json:"isName"`
	Price       float64 `json:"iPrice"`
}

// DisplayName picks the first non-empty human label.
func (i Inventory) DisplayName() string {
	for _, s := range []string{i.SizeName, i.Code, i.Description} {
		if s != "" {
			return s
		}
	}
	return strconv.FormatInt(i.ID, 10)
}

// InventoryFilter narrows the inventory list.
type InventoryFilter struct {
	Search string
	Limit  int
}

// GetInventories lists raw materials.
func (c *Client) GetInventories(ctx context.Context, filter InventoryFilter) ([]Inventory, error) {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	path := "/api/inventory"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	raw, err := c.get(ctx, "get_inventories", path)
	if err != nil {
		return nil, err
	}
	return DecodeList[Inventory](raw)
}
