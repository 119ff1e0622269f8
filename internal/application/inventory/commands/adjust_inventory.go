// Package commands holds the inventory write operations. Every handler runs
// its aggregate mutation, audit row and outbox enqueue in one transaction,
// then pushes the events onto the in-process bus after commit.
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

// AdjustInventoryCommand applies a signed on-hand delta at a location.
type AdjustInventoryCommand struct {
	ItemID     string `validate:"required"`
	LocationID string `validate:"required"`
	Delta      int    `validate:"required"`
	Reason     string
}

// CommandName identifies the command for metrics and logs.
func (AdjustInventoryCommand) CommandName() string { return "adjust_inventory" }

// AdjustInventoryResponse reports the post-adjustment balance.
type AdjustInventoryResponse struct {
	ItemID        string
	LocationID    string
	OnHand        int
	Allocated     int
	Available     int
	TransactionID string
}

// AdjustInventoryHandler handles inventory adjustments.
type AdjustInventoryHandler struct {
	txManager            common.TransactionManager
	balances             inventory.BalanceRepository
	txnLog               inventory.TransactionLogRepository
	enqueuer             common.OutboxEnqueuer
	publisher            common.EventPublisher
	clock                shared.Clock
	safetyStockThreshold int
}

// NewAdjustInventoryHandler creates the handler. A zero threshold disables
// safety-stock alerts.
func NewAdjustInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	txnLog inventory.TransactionLogRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
	safetyStockThreshold int,
) *AdjustInventoryHandler {
	return &AdjustInventoryHandler{
		txManager:            txManager,
		balances:             balances,
		txnLog:               txnLog,
		enqueuer:             enqueuer,
		publisher:            publisher,
		clock:                clock,
		safetyStockThreshold: safetyStockThreshold,
	}
}

// Handle executes the adjustment under a row lock.
func (h *AdjustInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AdjustInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *AdjustInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		balance, err := h.balances.FindOrCreateForUpdate(ctx, cmd.ItemID, cmd.LocationID, now)
		if err != nil {
			return err
		}

		before := balance.OnHand()
		if err := balance.Adjust(cmd.Delta, now); err != nil {
			return err
		}
		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}

		txn := &inventory.Transaction{
			ID:         uuid.New().String(),
			Type:       inventory.TxnAdjustment,
			ItemID:     cmd.ItemID,
			LocationID: cmd.LocationID,
			Delta:      cmd.Delta,
			BeforeQty:  before,
			AfterQty:   balance.OnHand(),
			Reason:     cmd.Reason,
			OccurredAt: now,
		}
		if err := h.txnLog.Add(ctx, txn); err != nil {
			return err
		}

		evs := []events.Event{
			events.NewInventoryAdjusted(cmd.ItemID, cmd.LocationID, cmd.Delta, before, balance.OnHand(), cmd.Reason, txn.ID),
		}
		if alert, fired := SafetyStockEvent(balance, h.safetyStockThreshold); fired {
			evs = append(evs, alert)
		}
		for _, ev := range evs {
			if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
				return err
			}
		}

		committed = evs
		response = &AdjustInventoryResponse{
			ItemID:        cmd.ItemID,
			LocationID:    cmd.LocationID,
			OnHand:        balance.OnHand(),
			Allocated:     balance.Allocated(),
			Available:     balance.Available(),
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

// SafetyStockEvent reports whether the balance dropped below the configured
// threshold and builds the alert event when it did.
func SafetyStockEvent(balance *inventory.Balance, threshold int) (events.Event, bool) {
	if threshold <= 0 || balance.Available() >= threshold {
		return nil, false
	}
	return events.SafetyStockAlert{
		InventoryEvent: events.InventoryEvent{ItemID: balance.ItemID()},
		LocationID:     balance.LocationID(),
		Available:      balance.Available(),
		Threshold:      threshold,
	}, true
}
