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

// ReserveLine is one item requested by a reservation.
type ReserveLine struct {
	ItemID   string `validate:"required"`
	Quantity int    `validate:"required,gt=0"`
}

// ReserveInventoryCommand claims stock for a reference (typically an order).
// Strategy strict fails the whole command on any shortfall; partial reserves
// what is available and reports the gap.
type ReserveInventoryCommand struct {
	ReferenceID   string        `validate:"required"`
	ReferenceType string        `validate:"required"`
	LocationID    string        `validate:"required"`
	Strategy      string        `validate:"omitempty,oneof=strict partial"`
	DurationDays  int           `validate:"omitempty,gt=0"`
	Lines         []ReserveLine `validate:"required,min=1,dive"`
}

// CommandName identifies the command for metrics and logs.
func (ReserveInventoryCommand) CommandName() string { return "reserve_inventory" }

// ReservedLine reports the outcome per requested line.
type ReservedLine struct {
	ItemID        string
	Requested     int
	Reserved      int
	ReservationID string
}

// ReserveInventoryResponse reports the reservation outcome.
type ReserveInventoryResponse struct {
	ReferenceID string
	LocationID  string
	Fully       bool
	Shortfall   int
	Lines       []ReservedLine
}

// ReserveInventoryHandler handles stock reservations.
type ReserveInventoryHandler struct {
	txManager    common.TransactionManager
	balances     inventory.BalanceRepository
	reservations inventory.ReservationRepository
	enqueuer     common.OutboxEnqueuer
	publisher    common.EventPublisher
	clock        shared.Clock
}

// NewReserveInventoryHandler creates the handler.
func NewReserveInventoryHandler(
	txManager common.TransactionManager,
	balances inventory.BalanceRepository,
	reservations inventory.ReservationRepository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ReserveInventoryHandler {
	return &ReserveInventoryHandler{
		txManager:    txManager,
		balances:     balances,
		reservations: reservations,
		enqueuer:     enqueuer,
		publisher:    publisher,
		clock:        clock,
	}
}

// Handle reserves every line under row locks, all-or-nothing per strategy.
func (h *ReserveInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ReserveInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	strategy := inventory.Strategy(cmd.Strategy)
	if strategy == "" {
		strategy = inventory.StrategyStrict
	}

	var (
		response  *ReserveInventoryResponse
		committed []events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()
		response = &ReserveInventoryResponse{
			ReferenceID: cmd.ReferenceID,
			LocationID:  cmd.LocationID,
			Fully:       true,
		}
		var (
			eventLines []events.ReservationLine
			expiresAt  = now
		)

		for _, line := range cmd.Lines {
			balance, err := h.balances.FindForUpdate(ctx, line.ItemID, cmd.LocationID)
			if err != nil {
				return err
			}

			toReserve := line.Quantity
			if balance.Available() < toReserve {
				if strategy == inventory.StrategyStrict {
					return shared.NewBusinessRuleError(
						"insufficient inventory: item %s location %s available %d requested %d",
						line.ItemID, cmd.LocationID, balance.Available(), line.Quantity)
				}
				toReserve = balance.Available()
			}

			reserved := ReservedLine{ItemID: line.ItemID, Requested: line.Quantity, Reserved: toReserve}
			if toReserve > 0 {
				if err := balance.Reserve(toReserve, now); err != nil {
					return err
				}
				if err := h.balances.Save(ctx, balance); err != nil {
					return err
				}

				reservation := inventory.NewReservation(
					uuid.New().String(), line.ItemID, cmd.LocationID, toReserve,
					cmd.ReferenceID, cmd.ReferenceType, now, cmd.DurationDays)
				if err := h.reservations.Add(ctx, reservation); err != nil {
					return err
				}
				reserved.ReservationID = reservation.ID()
				expiresAt = reservation.ExpiresAt()
			}

			if toReserve < line.Quantity {
				response.Fully = false
				response.Shortfall += line.Quantity - toReserve
			}
			response.Lines = append(response.Lines, reserved)
			eventLines = append(eventLines, events.ReservationLine{
				ItemID:    line.ItemID,
				Requested: line.Quantity,
				Reserved:  toReserve,
			})
		}

		firstItem := cmd.Lines[0].ItemID
		firstReservation := ""
		for _, l := range response.Lines {
			if l.ReservationID != "" {
				firstReservation = l.ReservationID
				break
			}
		}

		evs := []events.Event{events.InventoryReserved{
			InventoryEvent: events.InventoryEvent{ItemID: firstItem},
			ReservationID:  firstReservation,
			ReferenceID:    cmd.ReferenceID,
			ReferenceType:  cmd.ReferenceType,
			LocationID:     cmd.LocationID,
			Lines:          eventLines,
			Fully:          response.Fully,
			ExpiresAt:      expiresAt,
		}}
		if !response.Fully {
			evs = append(evs, events.PartialReservationWarning{
				InventoryEvent: events.InventoryEvent{ItemID: firstItem},
				ReservationID:  firstReservation,
				ReferenceID:    cmd.ReferenceID,
				LocationID:     cmd.LocationID,
				Lines:          eventLines,
				Shortfall:      response.Shortfall,
			})
		}
		for _, ev := range evs {
			if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
				return err
			}
		}
		committed = evs
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed...)
	return response, nil
}
