package workorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMItem is one component line of a bill of materials, priced at standard
// cost. Costing queries read these; the BOM itself is maintained elsewhere.
type BOMItem struct {
	BOMID        string
	ItemID       string
	Quantity     int
	StandardCost decimal.Decimal
}

// CostRecord is a manufacturing cost entry (labor, overhead, scrap) booked
// against a work order.
type CostRecord struct {
	ID          string
	WorkOrderID string
	Category    string
	Amount      decimal.Decimal
	IncurredAt  time.Time
}

// ComponentCost is the resolved cost of one BOM component for a costing run.
type ComponentCost struct {
	ItemID   string
	Quantity int
	UnitCost decimal.Decimal
}

// Extended is quantity x unit cost.
func (c ComponentCost) Extended() decimal.Decimal {
	return c.UnitCost.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CostSummary is the result of a COGS calculation over a date range.
type CostSummary struct {
	WorkOrderID    string
	MaterialCost   decimal.Decimal
	LaborCost      decimal.Decimal
	OverheadCost   decimal.Decimal
	TotalCost      decimal.Decimal
	ComponentCosts []ComponentCost
	PeriodStart    time.Time
	PeriodEnd      time.Time
}

// WeightedAverageUnitCost computes the weighted-average unit cost across
// priced receipts: sum(qty*cost) / sum(qty). Returns zero when no quantity.
func WeightedAverageUnitCost(quantities []int, unitCosts []decimal.Decimal) decimal.Decimal {
	totalQty := decimal.Zero
	totalCost := decimal.Zero
	for i, qty := range quantities {
		if i >= len(unitCosts) {
			break
		}
		q := decimal.NewFromInt(int64(qty))
		totalQty = totalQty.Add(q)
		totalCost = totalCost.Add(unitCosts[i].Mul(q))
	}
	if totalQty.IsZero() {
		return decimal.Zero
	}
	return totalCost.DivRound(totalQty, 4)
}
