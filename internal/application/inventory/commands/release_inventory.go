package commands

import (
	"context"
	"fmt"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

// ReleaseInventoryCommand returns a reservation's stock to available.
type ReleaseInventoryCommand struct {
	ReservationID string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (ReleaseInventoryCommand) CommandName() string { return "release_inventory" }

// ReleaseInventoryResponse reports the released quantity and new balance.
type ReleaseInventoryResponse struct {
	ReservationID string
	ItemID        string
	LocationID    string
	Quantity      int
	Available     int
}

// ReleaseInventoryHandler handles reservation releases.
type ReleaseInventoryHandler struct {
	txManager    common.TransactionManager
	balances     inventory.BalanceRepository
	reservations inventory.ReservationRepository
	enqueuer     common.OutboxEnqueuer
	publisher    common.EventPublisher
	clock        shared.Clock
}

// NewReleaseInventoryHandler creates the handler.
func NewReleaseInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	reservations inventory.ReservationRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ReleaseInventoryHandler {
	return &ReleaseInventoryHandler{
		txManager:    txManager,
		balances:     balances,
		reservations: reservations,
		enqueuer:     enqueuer,
		publisher:    publisher,
		clock:        clock,
	}
}

// Handle releases the reservation and its allocation atomically.
func (h *ReleaseInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReleaseInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var (
		response  *ReleaseInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		reservation, err := h.reservations.FindByID(ctx, cmd.ReservationID)
		if err != nil {
			return err
		}
		if err := reservation.Release(); err != nil {
			return err
		}

		balance, err := h.balances.FindForUpdate(ctx, reservation.ItemID(), reservation.LocationID())
		if err != nil {
			return err
		}
		if err := balance.Release(reservation.Quantity(), now); err != nil {
			return err
		}

		if err := h.balances.Save(ctx, balance); err != nil {
			return err
		}
		if err := h.reservations.Save(ctx, reservation); err != nil {
			return err
		}

		ev := events.InventoryReleased{
			InventoryEvent: events.InventoryEvent{ItemID: reservation.ItemID()},
			ReservationID:  reservation.ID(),
			LocationID:     reservation.LocationID(),
			Quantity:       reservation.Quantity(),
		}
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = []events.Event{ev}
		response = &ReleaseInventoryResponse{
			ReservationID: reservation.ID(),
			ItemID:        reservation.ItemID(),
			LocationID:    reservation.LocationID(),
			Quantity:      reservation.Quantity(),
			Available:     balance.Available(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
