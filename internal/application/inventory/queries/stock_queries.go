// Package queries holds the inventory read operations. Queries never lock
// rows and never write; snapshots are read-committed.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/inventory"
)

// BalanceQuery reads one (item, location) position.
type BalanceQuery struct {
	ItemID     string `validate:"required"`
	LocationID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (BalanceQuery) CommandName() string { return "balance_query" }

// BalanceView is the read model of one position.
type BalanceView struct {
	ItemID         string
	LocationID     string
	OnHand         int
	Allocated      int
	Available      int
	ActiveReserved int
	UpdatedAt      time.Time
}

// BalanceQueryHandler serves single-position reads.
type BalanceQueryHandler struct {
	balances     inventory.BalanceRepository
	reservations inventory.ReservationRepository
}

// NewBalanceQueryHandler creates the handler.
func NewBalanceQueryHandler(balances inventory.BalanceRepository, reservations inventory.ReservationRepository) *BalanceQueryHandler {
	return &BalanceQueryHandler{balances: balances, reservations: reservations}
}

// Handle reads the position and its active reservation total.
func (h *BalanceQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*BalanceQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	balance, err := h.balances.Find(ctx, q.ItemID, q.LocationID)
	if err != nil {
		return nil, err
	}
	reserved, err := h.reservations.SumActive(ctx, q.ItemID, q.LocationID)
	if err != nil {
		return nil, err
	}

	return &BalanceView{
		ItemID:         balance.ItemID(),
		LocationID:     balance.LocationID(),
		OnHand:         balance.OnHand(),
		Allocated:      balance.Allocated(),
		Available:      balance.Available(),
		ActiveReserved: reserved,
		UpdatedAt:      balance.UpdatedAt(),
	}, nil
}

// ItemSnapshotQuery reads an item's position across all locations.
type ItemSnapshotQuery struct {
	ItemID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (ItemSnapshotQuery) CommandName() string { return "item_snapshot_query" }

// ItemSnapshot aggregates all locations of one item.
type ItemSnapshot struct {
	ItemID         string
	TotalOnHand    int
	TotalAllocated int
	TotalAvailable int
	Locations      []BalanceView
}

// ItemSnapshotQueryHandler serves per-item snapshots.
type ItemSnapshotQueryHandler struct {
	balances inventory.BalanceRepository
}

// NewItemSnapshotQueryHandler creates the handler.
func NewItemSnapshotQueryHandler(balances inventory.BalanceRepository) *ItemSnapshotQueryHandler {
	return &ItemSnapshotQueryHandler{balances: balances}
}

// Handle reads every location balance and totals them.
func (h *ItemSnapshotQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*ItemSnapshotQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	balances, err := h.balances.FindByItem(ctx, q.ItemID)
	if err != nil {
		return nil, err
	}

	snapshot := &ItemSnapshot{ItemID: q.ItemID}
	for _, b := range balances {
		snapshot.TotalOnHand += b.OnHand()
		snapshot.TotalAllocated += b.Allocated()
		snapshot.TotalAvailable += b.Available()
		snapshot.Locations = append(snapshot.Locations, BalanceView{
			ItemID:     b.ItemID(),
			LocationID: b.LocationID(),
			OnHand:     b.OnHand(),
			Allocated:  b.Allocated(),
			Available:  b.Available(),
			UpdatedAt:  b.UpdatedAt(),
		})
	}
	return snapshot, nil
}

// LowStockQuery lists positions below an available threshold.
type LowStockQuery struct {
	Threshold int `validate:"required,gt=0"`
}

// CommandName identifies the query for metrics and logs.
func (LowStockQuery) CommandName() string { return "low_stock_query" }

// LowStockQueryHandler serves the low-stock report.
type LowStockQueryHandler struct {
	balances inventory.BalanceRepository
}

// NewLowStockQueryHandler creates the handler.
func NewLowStockQueryHandler(balances inventory.BalanceRepository) *LowStockQueryHandler {
	return &LowStockQueryHandler{balances: balances}
}

// Handle lists every balance below the threshold.
func (h *LowStockQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*LowStockQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	balances, err := h.balances.FindBelowAvailable(ctx, q.Threshold)
	if err != nil {
		return nil, err
	}

	views := make([]BalanceView, len(balances))
	for i, b := range balances {
		views[i] = BalanceView{
			ItemID:     b.ItemID(),
			LocationID: b.LocationID(),
			OnHand:     b.OnHand(),
			Allocated:  b.Allocated(),
			Available:  b.Available(),
			UpdatedAt:  b.UpdatedAt(),
		}
	}
	return views, nil
}

// StockMovementsQuery reads the audit trail of an item over a window.
type StockMovementsQuery struct {
	ItemID string    `validate:"required"`
	Since  time.Time `validate:"required"`
	Until  time.Time `validate:"required,gtfield=Since"`
}

// CommandName identifies the query for metrics and logs.
func (StockMovementsQuery) CommandName() string { return "stock_movements_query" }

// StockMovementsQueryHandler serves the movement audit trail.
type StockMovementsQueryHandler struct {
	txnLog inventory.TransactionLogRepository
}

// NewStockMovementsQueryHandler creates the handler.
func NewStockMovementsQueryHandler(txnLog inventory.TransactionLogRepository) *StockMovementsQueryHandler {
	return &StockMovementsQueryHandler{txnLog: txnLog}
}

// Handle reads the audit rows in the window, oldest first.
func (h *StockMovementsQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*StockMovementsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.txnLog.FindByItemSince(ctx, q.ItemID, q.Since, q.Until)
}
