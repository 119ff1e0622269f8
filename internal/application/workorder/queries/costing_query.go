// Package queries holds the work-order read operations, including the
// weighted-average COGS calculation.
package queries

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// DefaultComponentFetchLimit caps the concurrent per-component receipt
// lookups when no limit is configured.
const DefaultComponentFetchLimit = 10

// WorkOrderCostQuery computes the cost summary of a work order over a period.
// Material cost resolves per BOM component as the weighted-average unit cost
// of priced receipts in the period, falling back to the BOM standard cost when
// no receipts exist.
type WorkOrderCostQuery struct {
	WorkOrderID string    `validate:"required"`
	PeriodStart time.Time `validate:"required"`
	PeriodEnd   time.Time `validate:"required,gtfield=PeriodStart"`
}

// CommandName identifies the query for metrics and logs.
func (WorkOrderCostQuery) CommandName() string { return "work_order_cost_query" }

// WorkOrderCostQueryHandler serves cost summaries.
type WorkOrderCostQueryHandler struct {
	workOrders workorder.Repository
	costing    workorder.CostingRepository
	fetchLimit int
}

// NewWorkOrderCostQueryHandler creates the handler. fetchLimit bounds the
// concurrent receipt lookups; non-positive values fall back to the default.
func NewWorkOrderCostQueryHandler(workOrders workorder.Repository, costing workorder.CostingRepository, fetchLimit int) *WorkOrderCostQueryHandler {
	if fetchLimit <= 0 {
		fetchLimit = DefaultComponentFetchLimit
	}
	return &WorkOrderCostQueryHandler{workOrders: workOrders, costing: costing, fetchLimit: fetchLimit}
}

// Handle resolves component costs concurrently and folds in the booked labor
// and overhead records.
func (h *WorkOrderCostQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*WorkOrderCostQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	w, err := h.workOrders.FindByID(ctx, q.WorkOrderID)
	if err != nil {
		return nil, err
	}

	bomItems, err := h.costing.BOMItems(ctx, w.BOMID())
	if err != nil {
		return nil, err
	}

	components := make([]workorder.ComponentCost, len(bomItems))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.fetchLimit)
	for i, item := range bomItems {
		i, item := i, item
		g.Go(func() error {
			unitCost, err := h.resolveUnitCost(gctx, item, q.PeriodStart, q.PeriodEnd)
			if err != nil {
				return err
			}
			mu.Lock()
			components[i] = workorder.ComponentCost{
				ItemID:   item.ItemID,
				Quantity: item.Quantity,
				UnitCost: unitCost,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	material := decimal.Zero
	for _, c := range components {
		material = material.Add(c.Extended())
	}

	records, err := h.costing.CostRecords(ctx, q.WorkOrderID, q.PeriodStart, q.PeriodEnd)
	if err != nil {
		return nil, err
	}
	labor := decimal.Zero
	overhead := decimal.Zero
	for _, r := range records {
		switch r.Category {
		case "labor":
			labor = labor.Add(r.Amount)
		default:
			overhead = overhead.Add(r.Amount)
		}
	}

	return &workorder.CostSummary{
		WorkOrderID:    q.WorkOrderID,
		MaterialCost:   material,
		LaborCost:      labor,
		OverheadCost:   overhead,
		TotalCost:      material.Add(labor).Add(overhead),
		ComponentCosts: components,
		PeriodStart:    q.PeriodStart,
		PeriodEnd:      q.PeriodEnd,
	}, nil
}

// resolveUnitCost prefers the weighted average of priced receipts in the
// period and falls back to the BOM standard cost.
func (h *WorkOrderCostQueryHandler) resolveUnitCost(ctx context.Context, item *workorder.BOMItem, since, until time.Time) (decimal.Decimal, error) {
	receipts, err := h.costing.UnitCostHistory(ctx, item.ItemID, since, until)
	if err != nil {
		return decimal.Zero, err
	}
	if len(receipts) == 0 {
		return item.StandardCost, nil
	}

	quantities := make([]int, len(receipts))
	unitCosts := make([]decimal.Decimal, len(receipts))
	for i, r := range receipts {
		quantities[i] = r.Quantity
		unitCosts[i] = r.UnitCost
	}
	avg := workorder.WeightedAverageUnitCost(quantities, unitCosts)
	if avg.IsZero() {
		return item.StandardCost, nil
	}
	return avg, nil
}
