package upstream

import (
	"context"
	"fmt"
)

// RAB ("Rencana Anggaran Biaya") is the per-order costing worksheet.
// Every figure below is computed server-side; orderdesk mirrors them as
// opaque numbers and never recomputes the financial formulas.

// CostBudgetPlanItem is one (product, size) costing row.
type CostBudgetPlanItem struct {
	ID                           int64     `json:"ocbpId"`
	ProductID                    int64     `json:"cpId"`
	ProductName                  string    `json:"cpName"`
	SizeGroup                    string    `json:"sGroup"`
	Amount                       int       `json:"ocbpAmount"`
	MaterialName                 string    `json:"ocbpMaterialName"`
	MaterialCode                 string    `json:"ocbpMaterialCode"`
	MaterialNeed                 float64   `json:"ocbpMaterialNeed"`
	MaterialNeedTotal            float64   `json:"ocbpMaterialNeedTotal"`
	MaterialPrice                float64   `json:"ocbpMaterialPrice"`
	MaterialNeedPrice            float64   `json:"ocbpMaterialNeedPrice"`
	MaterialNeedPriceTotal       float64   `json:"ocbpMaterialNeedPriceTotal"`
	OperationalServiceColumns    []string  `json:"ocbpOperationalServiceColumn"`
	OperationalServiceValues     []float64 `json:"ocbpOperationalServiceValue"`
	OperationalServiceValueTotal float64   `json:"ocbpOperationalServiceValueTotal"`
	UtilityColumns               []string  `json:"ocbpUtilityColumn"`
	UtilityValues                []float64 `json:"ocbpUtilityValue"`
	UtilityValueTotal            float64   `json:"ocbpUtilityValueTotal"`
	Cogs                         float64   `json:"ocbpCogs"`
	PriceOff                     float64   `json:"ocbpPriceOff"`
	TotalOff                     float64   `json:"ocbpTotalOff"`
	SettingMarginPercentage      float64   `json:"ocbpSettingMarginPercentage"`
	Margin                       float64   `json:"ocbpMargin"`
	MarginNominal                float64   `json:"ocbpMarginNominal"`
	MarginTotal                  float64   `json:"ocbpMarginTotal"`
	ProfitRemaining              float64   `json:"ocbpProfitRemaining"`
	ProfitRemainingTotal         float64   `json:"ocbpProfitRemainingTotal"`
	Percent                      float64   `json:"ocbpPercent"`
}

// CostBudgetPlanSummary is the order-level costing roll-up.
type CostBudgetPlanSummary struct {
	ID                           int64                `json:"ocbpsId"`
	OrderID                      int64                `json:"oId"`
	Amount                       int                  `json:"ocbpsAmount"`
	MaterialNeedTotal            float64              `json:"ocbpsMaterialNeedTotal"`
	Cogs                         float64              `json:"ocbpsCogs"`
	TotalOff                     float64              `json:"ocbpsTotalOff"`
	MarginTotal                  float64              `json:"ocbpsMarginTotal"`
	ProfitRemaining              float64              `json:"ocbpsProfitRemaining"`
	Marketing                    float64              `json:"ocbpsMarketing"`
	Incentive                    float64              `json:"ocbpsIncentive"`
	MainDevelop                  float64              `json:"ocbpsMainDevelop"`
	SettingMainDevelopPercentage float64              `json:"ocbpsSettingMainDevelopPercentage"`
	SettingIncentivePercentage   float64              `json:"ocbpsSettingIncentivePercentage"`
	SettingMarketingPercentage   float64              `json:"ocbpsSettingMarketingPercentage"`
	Items                        []CostBudgetPlanItem `json:"ocbpItems"`
}

// GetCostBudgetPlanSummary fetches the RAB worksheet of an order.
func (c *Client) GetCostBudgetPlanSummary(ctx context.Context, orderID int64) (*CostBudgetPlanSummary, error) {
	raw, err := c.get(ctx, "get_rab_summary", fmt.Sprintf("/api/order/%d/cost-budget-plan/summary", orderID))
	if err != nil {
		return nil, err
	}
	summary, err := DecodeRecord[CostBudgetPlanSummary](raw)
	if err != nil {
		return nil, &TransportError{Op: "get_rab_summary", Err: err}
	}
	return summary, nil
}

// CostBudgetPlanItemInput is the editable subset of a costing row.
// Derived columns are omitted; the server recomputes them.
type CostBudgetPlanItemInput struct {
	ID                        int64     `json:"ocbpId"`
	ProductID                 int64     `json:"cpId"`
	ProductName               string    `json:"cpName"`
	SizeGroup                 string    `json:"sGroup"`
	Amount                    int       `json:"ocbpAmount"`
	MaterialName              string    `json:"ocbpMaterialName"`
	MaterialCode              string    `json:"ocbpMaterialCode"`
	MaterialNeed              float64   `json:"ocbpMaterialNeed"`
	MaterialPrice             float64   `json:"ocbpMaterialPrice"`
	OperationalServiceColumns []string  `json:"ocbpOperationalServiceColumn"`
	OperationalServiceValues  []float64 `json:"ocbpOperationalServiceValue"`
	UtilityColumns            []string  `json:"ocbpUtilityColumn"`
	UtilityValues             []float64 `json:"ocbpUtilityValue"`
	PriceOff                  float64   `json:"ocbpPriceOff"`
	SettingMarginPercentage   float64   `json:"ocbpSettingMarginPercentage"`
}

type updateCostBudgetPlanPayload struct {
	SummaryID int64                     `json:"ocbpsId"`
	Items     []CostBudgetPlanItemInput `json:"ocbpItems"`
}

// UpdateCostBudgetPlan pushes edited costing rows upstream.
func (c *Client) UpdateCostBudgetPlan(ctx context.Context, summaryID int64, items []CostBudgetPlanItemInput) error {
	_, err := c.send(ctx, "update_rab", "PUT", "/api/order/cost-budget-plan",
		updateCostBudgetPlanPayload{SummaryID: summaryID, Items: items})
	return err
}

// SummaryPercentageUpdate adjusts the profit-sharing split.
type SummaryPercentageUpdate struct {
	SummaryID                    int64   `json:"ocbpsId"`
	SettingMainDevelopPercentage float64 `json:"ocbpsSettingMainDevelopPercentage"`
	SettingIncentivePercentage   float64 `json:"ocbpsSettingIncentivePercentage"`
	SettingMarketingPercentage   float64 `json:"ocbpsSettingMarketingPercentage"`
}

// UpdateSummaryPercentage pushes the split percentages upstream.
func (c *Client) UpdateSummaryPercentage(ctx context.Context, update SummaryPercentageUpdate) error {
	_, err := c.send(ctx, "update_rab_percentage", "PUT", "/api/order/cost-budget-plan/summary/percentage", update)
	return err
}
