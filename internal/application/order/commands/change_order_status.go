package commands

import (
	"context"
	"fmt"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
)

// ChangeOrderStatusCommand moves an order through its lifecycle. The target
// status is validated against the closed set before the matrix check; every
// successful transition writes a history row alongside the event.
type ChangeOrderStatusCommand struct {
	OrderID string `validate:"required"`
	Status  string `validate:"required"`
	Reason  string
}

// CommandName identifies the command for metrics and logs.
func (ChangeOrderStatusCommand) CommandName() string { return "change_order_status" }

// ChangeOrderStatusResponse reports the executed transition.
type ChangeOrderStatusResponse struct {
	OrderID    string
	FromStatus string
	ToStatus   string
}

// ChangeOrderStatusHandler handles all order lifecycle transitions.
type ChangeOrderStatusHandler struct {
	txManager common.TransactionManager
	orders    order.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewChangeOrderStatusHandler creates the handler.
func NewChangeOrderStatusHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *ChangeOrderStatusHandler {
	return &ChangeOrderStatusHandler{
		txManager: txManager,
		orders:    orders,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle executes the transition, history row and event in one transaction.
func (h *ChangeOrderStatusHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ChangeOrderStatusCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	to, err := order.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	var (
		response  *ChangeOrderStatusResponse
		committed events.Event
	)

	err = h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		o, err := h.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}
		from := o.Status()
		if err := o.TransitionTo(to, now); err != nil {
			return err
		}
		if err := h.orders.Save(ctx, o); err != nil {
			return err
		}
		if err := h.orders.AddHistory(ctx, &order.HistoryEntry{
			OrderID:    o.ID(),
			FromStatus: from,
			ToStatus:   to,
			Note:       cmd.Reason,
			ChangedAt:  now,
		}); err != nil {
			return err
		}

		ev := events.NewOrderStatusChanged(
			statusEventType(from, to), o.ID(), string(from), string(to), cmd.Reason)
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = ev
		response = &ChangeOrderStatusResponse{
			OrderID:    o.ID(),
			FromStatus: string(from),
			ToStatus:   string(to),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed)
	return response, nil
}

// statusEventType maps a transition to its event type. Leaving on_hold is a
// release regardless of the destination.
func statusEventType(from, to order.Status) string {
	if from == order.StatusOnHold && to != order.StatusCancelled {
		return events.TypeOrderReleasedFromHold
	}
	switch to {
	case order.StatusProcessing:
		return events.TypeOrderProcessing
	case order.StatusShipped:
		return events.TypeOrderShipped
	case order.StatusDelivered:
		return events.TypeOrderDelivered
	case order.StatusReturned:
		return events.TypeOrderReturned
	case order.StatusRefunded:
		return events.TypeOrderRefunded
	case order.StatusCancelled:
		return events.TypeOrderCancelled
	case order.StatusOnHold:
		return events.TypeOrderOnHold
	default:
		return events.TypeOrderUpdated
	}
}
