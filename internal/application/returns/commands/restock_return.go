package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
)

// RestockReturnCommand puts the eligible items of a completed return back on
// hand. Damaged and defective units lost eligibility at receipt; already
// restocked items are skipped.
type RestockReturnCommand struct {
	ReturnID string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (RestockReturnCommand) CommandName() string { return "restock_return" }

// RestockedItem reports one restocked line.
type RestockedItem struct {
	ReturnItemID string
	ItemID       string
	LocationID   string
	Quantity     int
}

// RestockReturnResponse lists what went back on hand.
type RestockReturnResponse struct {
	ReturnID string
	Items    []RestockedItem
}

// RestockReturnHandler handles post-completion restocking.
type RestockReturnHandler struct {
	txManager common.TransactionManager
	rets      returns.Repository
	balances  inventory.BalanceRepository
	txnLog    inventory.TransactionLogRepository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewRestockReturnHandler creates the handler.
func NewRestockReturnHandler(
	txManager common.TransactionManager,
	rets returns.Repository,
	balances inventory.BalanceRepository,
	txnLog inventory.TransactionLogRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *RestockReturnHandler {
	return &RestockReturnHandler{
		txManager: txManager,
		rets:      rets,
		balances:  balances,
		txnLog:    txnLog,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle adjusts each eligible balance up, writes the audit row and marks the
// item restocked, all in one transaction.
func (h *RestockReturnHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RestockReturnCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *RestockReturnResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		r, err := h.rets.FindByID(ctx, cmd.ReturnID)
		if err != nil {
			return err
		}
		if r.Status() != returns.StatusCompleted {
			return shared.NewInvalidStatusError("return", string(r.Status()), "restocked")
		}

		eligible := r.RestockableItems()
		if len(eligible) == 0 {
			return shared.NewBusinessRuleError("return %s has no restockable items", r.ID())
		}

		response = &RestockReturnResponse{ReturnID: r.ID()}
		for _, item := range eligible {
			balance, err := h.balances.FindOrCreateForUpdate(ctx, item.ItemID, item.LocationID, now)
			if err != nil {
				return err
			}
			before := balance.OnHand()
			if err := balance.Adjust(item.Quantity, now); err != nil {
				return err
			}
			if err := h.balances.Save(ctx, balance); err != nil {
				return err
			}

			txn := &inventory.Transaction{
				ID:         uuid.New().String(),
				Type:       inventory.TxnAdjustment,
				ItemID:     item.ItemID,
				LocationID: item.LocationID,
				Delta:      item.Quantity,
				BeforeQty:  before,
				AfterQty:   balance.OnHand(),
				Reason:     inventory.ReasonReturnRestock,
				OccurredAt: now,
			}
			if err := h.txnLog.Add(ctx, txn); err != nil {
				return err
			}

			if err := r.MarkRestocked(item.ID, now); err != nil {
				return err
			}

			ev := events.NewInventoryAdjusted(item.ItemID, item.LocationID,
				item.Quantity, before, balance.OnHand(), inventory.ReasonReturnRestock, txn.ID)
			if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
				return err
			}
			committed = append(committed, ev)

			response.Items = append(response.Items, RestockedItem{
				ReturnItemID: item.ID,
				ItemID:       item.ItemID,
				LocationID:   item.LocationID,
				Quantity:     item.Quantity,
			})
		}

		return h.rets.Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
