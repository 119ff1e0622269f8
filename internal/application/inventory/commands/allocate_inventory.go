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

// AllocateInventoryCommand converts a reservation into consumption at
// fulfillment time: on-hand and allocated shrink together and the reservation
// is marked consumed.
type AllocateInventoryCommand struct {
	ReservationID string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (AllocateInventoryCommand) CommandName() string { return "allocate_inventory" }

// AllocateInventoryResponse reports the consumed quantity and new balance.
type AllocateInventoryResponse struct {
	ReservationID string
	ItemID        string
	LocationID    string
	Quantity      int
	OnHand        int
}

// AllocateInventoryHandler handles reservation consumption.
type AllocateInventoryHandler struct {
	txManager    common.TransactionManager
	balances     inventory.BalanceRepository
	reservations inventory.ReservationRepository
	txnLog       inventory.TransactionLogRepository
	enqueuer     common.OutboxEnqueuer
	publisher    common.EventPublisher
	clock        shared.Clock
}

// NewAllocateInventoryHandler creates the handler.
func NewAllocateInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	reservations inventory.ReservationRepository,
	txnLog inventory.TransactionLogRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AllocateInventoryHandler {
	return &AllocateInventoryHandler{
		txManager:    txManager,
		balances:     balances,
		reservations: reservations,
		txnLog:       txnLog,
		enqueuer:     enqueuer,
		publisher:    publisher,
		clock:        clock,
	}
}

// Handle consumes the reservation under a row lock.
func (h *AllocateInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AllocateInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *AllocateInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		reservation, err := h.reservations.FindByID(ctx, cmd.ReservationID)
		if err != nil {
			return err
		}
		if err := reservation.Consume(); err != nil {
			return err
		}

		balance, err := h.balances.FindForUpdate(ctx, reservation.ItemID(), reservation.LocationID())
		if err != nil {
			return err
		}
		before := balance.OnHand()
		if err := balance.Allocate(reservation.Quantity(), now); err != nil {
			return err
		}

		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}
		if err := h.reservations.Save(ctx, reservation); err != nil {
			return err
		}

		txn := &inventory.Transaction{
			ID:         uuid.New().String(),
			Type:       inventory.TxnAllocation,
			ItemID:     reservation.ItemID(),
			LocationID: reservation.LocationID(),
			Delta:      -reservation.Quantity(),
			BeforeQty:  before,
			AfterQty:   balance.OnHand(),
			Reason:     reservation.ReferenceType() + ":" + reservation.ReferenceID(),
			OccurredAt: now,
		}
		if err := h.txnLog.Add(ctx, txn); err != nil {
			return err
		}

		ev := events.InventoryAllocated{
			InventoryEvent: events.InventoryEvent{ItemID: reservation.ItemID()},
			ReservationID:  reservation.ID(),
			LocationID:     reservation.LocationID(),
			Quantity:       reservation.Quantity(),
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &AllocateInventoryResponse{
			ReservationID: reservation.ID(),
			ItemID:        reservation.ItemID(),
			LocationID:    reservation.LocationID(),
			Quantity:      reservation.Quantity(),
			OnHand:        balance.OnHand(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}

// DeallocateInventoryCommand reverses an allocation: stock returns to on-hand
// and the reservation becomes active again.
type DeallocateInventoryCommand struct {
	ReservationID string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (DeallocateInventoryCommand) CommandName() string { return "deallocate_inventory" }

// DeallocateInventoryResponse reports the restored balance.
type DeallocateInventoryResponse struct {
	ReservationID string
	ItemID        string
	LocationID    string
	Quantity      int
	OnHand        int
}

// DeallocateInventoryHandler handles allocation reversals.
type DeallocateInventoryHandler struct {
	txManager    common.TransactionManager
	balances     inventory.BalanceRepository
	reservations inventory.ReservationRepository
	enqueuer     common.OutboxEnqueuer
	publisher    common.EventPublisher
	clock        shared.Clock
}

// NewDeallocateInventoryHandler creates the handler.
func NewDeallocateInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	reservations inventory.ReservationRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *DeallocateInventoryHandler {
	return &DeallocateInventoryHandler{
		txManager:    txManager,
		balances:     balances,
		reservations: reservations,
		enqueuer:     enqueuer,
		publisher:    publisher,
		clock:        clock,
	}
}

// Handle reactivates a consumed reservation and restores the balance.
func (h *DeallocateInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*DeallocateInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *DeallocateInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		reservation, err := h.reservations.FindByID(ctx, cmd.ReservationID)
		if err != nil {
			return err
		}
		if err := reservation.Reactivate(); err != nil {
			return err
		}

		balance, err := h.balances.FindForUpdate(ctx, reservation.ItemID(), reservation.LocationID())
		if err != nil {
			return err
		}
		if err := balance.Deallocate(reservation.Quantity(), now); err != nil {
			return err
		}

		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}
		if err := h.reservations.Save(ctx, reservation); err != nil {
			return err
		}

		ev := events.InventoryDeallocated{
			InventoryEvent: events.InventoryEvent{ItemID: reservation.ItemID()},
			ReservationID:  reservation.ID(),
			LocationID:     reservation.LocationID(),
			Quantity:       reservation.Quantity(),
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &DeallocateInventoryResponse{
			ReservationID: reservation.ID(),
			ItemID:        reservation.ItemID(),
			LocationID:    reservation.LocationID(),
			Quantity:      reservation.Quantity(),
			OnHand:        balance.OnHand(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
