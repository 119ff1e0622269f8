package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

// ReceiveInventoryCommand books inbound stock at a location. A positive unit
// cost also records a priced receipt for weighted-average costing.
type ReceiveInventoryCommand struct {
	ItemID      string `validate:"required"`
	LocationID  string `validate:"required"`
	Quantity    int    `validate:"required,gt=0"`
	ReferenceID string
	UnitCost    decimal.Decimal
}

// CommandName identifies the command for metrics and logs.
func (ReceiveInventoryCommand) CommandName() string { return "receive_inventory" }

// ReceiveInventoryResponse reports the post-receipt balance.
type ReceiveInventoryResponse struct {
	ItemID        string
	LocationID    string
	OnHand        int
	TransactionID string
}

// ReceiveInventoryHandler handles inbound receipts.
type ReceiveInventoryHandler struct {
	txManager common.TransactionManager
	balances  inventory.BalanceRepository
	txnLog    inventory.TransactionLogRepository
	receipts  inventory.ReceiptRepository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewReceiveInventoryHandler creates the handler.
func NewReceiveInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	txnLog inventory.TransactionLogRepository,
	receipts inventory.ReceiptRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ReceiveInventoryHandler {
	return &ReceiveInventoryHandler{
		txManager: txManager,
		balances:  balances,
		txnLog:    txnLog,
		receipts:  receipts,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle books the receipt under a row lock.
func (h *ReceiveInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReceiveInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *ReceiveInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		balance, err := h.balances.FindOrCreateForUpdate(ctx, cmd.ItemID, cmd.LocationID, now)
		if err != nil {
			return err
		}
		before := balance.OnHand()
		if err := balance.Adjust(cmd.Quantity, now); err != nil {
			return err
		}
		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}

		txn := &inventory.Transaction{
			ID:         uuid.New().String(),
			Type:       inventory.TxnReceipt,
			ItemID:     cmd.ItemID,
			LocationID: cmd.LocationID,
			Delta:      cmd.Quantity,
			BeforeQty:  before,
			AfterQty:   balance.OnHand(),
			Reason:     cmd.ReferenceID,
			OccurredAt: now,
		}
		if err := h.txnLog.Add(ctx, txn); err != nil {
			return err
		}

		if cmd.UnitCost.IsPositive() {
			receipt := &inventory.PricedReceipt{
				ID:         uuid.New().String(),
				ItemID:     cmd.ItemID,
				LocationID: cmd.LocationID,
				Quantity:   cmd.Quantity,
				UnitCost:   cmd.UnitCost,
				ReceivedAt: now,
			}
			if err := h.receipts.AddPricedReceipt(ctx, receipt); err != nil {
				return err
			}
		}

		ev := events.InventoryReceived{
			InventoryEvent: events.InventoryEvent{ItemID: cmd.ItemID},
			LocationID:     cmd.LocationID,
			Quantity:       cmd.Quantity,
			ReferenceID:    cmd.ReferenceID,
			TransactionID:  txn.ID,
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &ReceiveInventoryResponse{
			ItemID:        cmd.ItemID,
			LocationID:    cmd.LocationID,
			OnHand:        balance.OnHand(),
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
