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

// TransferInventoryCommand moves free (unallocated) stock between locations.
type TransferInventoryCommand struct {
	ItemID         string `validate:"required"`
	FromLocationID string `validate:"required"`
	ToLocationID   string `validate:"required,nefield=FromLocationID"`
	Quantity       int    `validate:"required,gt=0"`
	Reason         string
}

// CommandName identifies the command for metrics and logs.
func (TransferInventoryCommand) CommandName() string { return "transfer_inventory" }

// TransferInventoryResponse reports both post-transfer balances.
type TransferInventoryResponse struct {
	ItemID        string
	FromOnHand    int
	ToOnHand      int
	Quantity      int
	TransactionID string
}

// TransferInventoryHandler handles inter-location transfers.
type TransferInventoryHandler struct {
	txManager common.TransactionManager
	balances  inventory.BalanceRepository
	txnLog    inventory.TransactionLogRepository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewTransferInventoryHandler creates the handler.
func NewTransferInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	txnLog inventory.TransactionLogRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *TransferInventoryHandler {
	return &TransferInventoryHandler{
		txManager: txManager,
		balances:  balances,
		txnLog:    txnLog,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle locks both balances in location order (stable lock ordering avoids
// deadlock between opposing transfers), moves the stock, and writes one audit
// row per side under a shared transfer id.
func (h *TransferInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TransferInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *TransferInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		var from, to *inventory.Balance
		var err error
		if cmd.FromLocationID < cmd.ToLocationID {
			from, err = h.balances.FindForUpdate(ctx, cmd.ItemID, cmd.FromLocationID)
			if err != nil {
				return err
			}
			to, err = h.balances.FindOrCreateForUpdate(ctx, cmd.ItemID, cmd.ToLocationID, now)
		} else {
			to, err = h.balances.FindOrCreateForUpdate(ctx, cmd.ItemID, cmd.ToLocationID, now)
			if err != nil {
				return err
			}
			from, err = h.balances.FindForUpdate(ctx, cmd.ItemID, cmd.FromLocationID)
		}
		if err != nil {
			return err
		}

		fromBefore := from.OnHand()
		toBefore := to.OnHand()
		if err := from.TransferOut(cmd.Quantity, now); err != nil {
			return err
		}
		if err := to.TransferIn(cmd.Quantity, now); err != nil {
			return err
		}
		if err := h.balances.Save(ctx, from); err != nil {
			return err
		}
		if err := h.balances.Save(ctx, to); err != nil {
			return err
		}

		transferID := uuid.New().String()
		outTxn := &inventory.Transaction{
			ID:         transferID,
			Type:       inventory.TxnTransfer,
			ItemID:     cmd.ItemID,
			LocationID: cmd.FromLocationID,
			Delta:      -cmd.Quantity,
			BeforeQty:  fromBefore,
			AfterQty:   from.OnHand(),
			Reason:     cmd.Reason,
			OccurredAt: now,
		}
		inTxn := &inventory.Transaction{
			ID:         uuid.New().String(),
			Type:       inventory.TxnTransfer,
			ItemID:     cmd.ItemID,
			LocationID: cmd.ToLocationID,
			Delta:      cmd.Quantity,
			BeforeQty:  toBefore,
			AfterQty:   to.OnHand(),
			Reason:     cmd.Reason,
			OccurredAt: now,
		}
		if err := h.txnLog.Add(ctx, outTxn); err != nil {
			return err
		}
		if err := h.txnLog.Add(ctx, inTxn); err != nil {
			return err
		}

		ev := events.InventoryTransferred{
			InventoryEvent: events.InventoryEvent{ItemID: cmd.ItemID},
			FromLocationID: cmd.FromLocationID,
			ToLocationID:   cmd.ToLocationID,
			Quantity:       cmd.Quantity,
			TransactionID:  transferID,
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &TransferInventoryResponse{
			ItemID:        cmd.ItemID,
			FromOnHand:    from.OnHand(),
			ToOnHand:      to.OnHand(),
			Quantity:      cmd.Quantity,
			TransactionID: transferID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
