package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

// CycleCountCommand overwrites on-hand with a physical count result. Counts
// below the current allocation are rejected; release or allocate first.
type CycleCountCommand struct {
	ItemID     string `validate:"required"`
	LocationID string `validate:"required"`
	CountedQty int    `validate:"gte=0"`
	Reason     string
}

// CommandName identifies the command for metrics and logs.
func (CycleCountCommand) CommandName() string { return "cycle_count" }

// CycleCountResponse reports the variance found by the count.
type CycleCountResponse struct {
	ItemID        string
	LocationID    string
	PreviousQty   int
	CountedQty    int
	Variance      int
	TransactionID string
}

// CycleCountHandler handles physical count corrections.
type CycleCountHandler struct {
	txManager common.TransactionManager
	balances  inventory.BalanceRepository
	txnLog    inventory.TransactionLogRepository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewCycleCountHandler creates the handler.
func NewCycleCountHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	txnLog inventory.TransactionLogRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CycleCountHandler {
	return &CycleCountHandler{
		txManager: txManager,
		balances:  balances,
		txnLog:    txnLog,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle applies the count under a row lock.
func (h *CycleCountHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CycleCountCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *CycleCountResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		balance, err := h.balances.FindOrCreateForUpdate(ctx, cmd.ItemID, cmd.LocationID, now)
		if err != nil {
			return err
		}
		previous := balance.OnHand()
		if err := balance.SetCounted(cmd.CountedQty, now); err != nil {
			return err
		}
		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}

		variance := cmd.CountedQty - previous
		txn := &inventory.Transaction{
			ID:         uuid.New().String(),
			Type:       inventory.TxnCycleCount,
			ItemID:     cmd.ItemID,
			LocationID: cmd.LocationID,
			Delta:      variance,
			BeforeQty:  previous,
			AfterQty:   cmd.CountedQty,
			Reason:     cmd.Reason,
			OccurredAt: now,
		}
		if err := h.txnLog.Add(ctx, txn); err != nil {
			return err
		}

		ev := events.InventoryCycleCountCompleted{
			InventoryEvent: events.InventoryEvent{ItemID: cmd.ItemID},
			LocationID:     cmd.LocationID,
			CountedQty:     cmd.CountedQty,
			PreviousQty:    previous,
			Variance:       variance,
			TransactionID:  txn.ID,
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &CycleCountResponse{
			ItemID:        cmd.ItemID,
			LocationID:    cmd.LocationID,
			PreviousQty:   previous,
			CountedQty:    cmd.CountedQty,
			Variance:      variance,
			TransactionID: txn.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
