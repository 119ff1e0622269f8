package events

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harborline/omscore/internal/application/common"
	invcommands "github.com/harborline/omscore/internal/application/inventory/commands"
	"github.com/harborline/omscore/internal/domain/events"
)

// OrderReservationHandler reserves stock when an order is created. It runs on
// the in-process bus, outside the order's transaction: a reservation failure
// never unwinds the order, it surfaces as a PartialReservationWarning or a
// logged error for operators to chase.
type OrderReservationHandler struct {
	mediator   common.Mediator
	locationID string
	strategy   string
	logger     zerolog.Logger
}

// NewOrderReservationHandler creates the handler. locationID is the fulfilment
// location reservations draw from; strategy is "strict" or "partial".
func NewOrderReservationHandler(mediator common.Mediator, locationID, strategy string, logger zerolog.Logger) *OrderReservationHandler {
	return &OrderReservationHandler{
		mediator:   mediator,
		locationID: locationID,
		strategy:   strategy,
		logger:     logger.With().Str("component", "order_reservation").Logger(),
	}
}

// Handle reacts to OrderCreated and ignores everything else.
func (h *OrderReservationHandler) Handle(event events.Event) error {
	created, ok := event.(events.OrderCreated)
	if !ok {
		return nil
	}
	if len(created.Lines) == 0 {
		return nil
	}

	lines := make([]invcommands.ReserveLine, len(created.Lines))
	for i, line := range created.Lines {
		lines[i] = invcommands.ReserveLine{ItemID: line.SKU, Quantity: line.Quantity}
	}

	cmd := &invcommands.ReserveInventoryCommand{
		ReferenceID:   created.OrderID,
		ReferenceType: "order",
		LocationID:    h.locationID,
		Strategy:      h.strategy,
		Lines:         lines,
	}

	if _, err := h.mediator.Send(context.Background(), cmd); err != nil {
		h.logger.Error().
			Err(err).
			Str("order_id", created.OrderID).
			Msg("inventory reservation for new order failed")
		return fmt.Errorf("reserve inventory for order %s: %w", created.OrderID, err)
	}

	h.logger.Info().
		Str("order_id", created.OrderID).
		Int("lines", len(lines)).
		Msg("inventory reserved for new order")
	return nil
}
