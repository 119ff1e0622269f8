package workorder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists work orders with optimistic locking. SaveVersioned
// writes only when the stored version matches expectedVersion and bumps the
// version by one; a mismatch surfaces as ConcurrentModificationError.
type Repository interface {
	Add(ctx context.Context, w *WorkOrder) error
	FindByID(ctx context.Context, id string) (*WorkOrder, error)
	SaveVersioned(ctx context.Context, w *WorkOrder, expectedVersion int) error

	AddNote(ctx context.Context, note *Note) error
	Notes(ctx context.Context, workOrderID string) ([]*Note, error)
}

// CostingRepository reads the inputs of cost calculations.
type CostingRepository interface {
	BOMItems(ctx context.Context, bomID string) ([]*BOMItem, error)
	CostRecords(ctx context.Context, workOrderID string, since, until time.Time) ([]*CostRecord, error)

	// UnitCostHistory returns (quantity, unit cost) pairs for an item's priced
	// receipts within the range, for weighted-average costing.
	UnitCostHistory(ctx context.Context, itemID string, since, until time.Time) ([]PricedReceipt, error)
}

// PricedReceipt is one priced inbound movement used by weighted-average cost.
type PricedReceipt struct {
	Quantity int
	UnitCost decimal.Decimal
}
