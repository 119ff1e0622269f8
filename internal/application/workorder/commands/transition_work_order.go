package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// TransitionWorkOrderCommand moves a work order through its lifecycle. The
// caller supplies the version it read; a concurrent writer invalidates it.
// Scheduling also sets the due date, completion paths may record labor.
type TransitionWorkOrderCommand struct {
	WorkOrderID string `validate:"required"`
	Status      string `validate:"required"`
	Version     int    `validate:"required,gt=0"`
	DueDate     *time.Time
	ActualHours float64 `validate:"gte=0"`
}

// CommandName identifies the command for metrics and logs.
func (TransitionWorkOrderCommand) CommandName() string { return "transition_work_order" }

// TransitionWorkOrderResponse reports the executed transition and new version.
type TransitionWorkOrderResponse struct {
	WorkOrderID string
	FromStatus  string
	ToStatus    string
	Version     int
}

// TransitionWorkOrderHandler handles all work-order lifecycle transitions.
type TransitionWorkOrderHandler struct {
	txManager  common.TransactionManager
	workOrders workorder.Repository
	enqueuer   common.OutboxEnqueuer
	publisher  common.EventPublisher
	clock      shared.Clock
}

// NewTransitionWorkOrderHandler creates the handler.
func NewTransitionWorkOrderHandler(
	txManager common.TransactionManager,
	workOrders workorder.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *TransitionWorkOrderHandler {
	return &TransitionWorkOrderHandler{
		txManager:  txManager,
		workOrders: workOrders,
		enqueuer:   enqueuer,
		publisher:  publisher,
		clock:      clock,
	}
}

// Handle checks the caller's version, applies the transition and writes the
// aggregate with the conditional version bump.
func (h *TransitionWorkOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*TransitionWorkOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	to := workorder.Status(cmd.Status)
	eventType, known := workOrderEventType(to)
	if !known {
		return nil, shared.NewValidationError("status", "unknown work order status: "+cmd.Status)
	}

	var (
		response  *TransitionWorkOrderResponse
		committed events.Event
	)

	err := h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.clock.Now()

		w, err := h.workOrders.FindByID(ctx, cmd.WorkOrderID)
		if err != nil {
			return err
		}
		if err := w.CheckVersion(cmd.Version); err != nil {
			return err
		}

		from := w.Status()
		if cmd.DueDate != nil {
			if err := w.Reschedule(*cmd.DueDate, now); err != nil {
				return err
			}
		}
		if err := w.TransitionTo(to, now); err != nil {
			return err
		}
		if cmd.ActualHours > 0 {
			if err := w.RecordActualHours(cmd.ActualHours, now); err != nil {
				return err
			}
		}

		if err := h.workOrders.SaveVersioned(ctx, w, cmd.Version); err != nil {
			return err
		}

		ev := events.NewWorkOrderTransitioned(eventType, w.ID(), string(from), string(to), w.Version())
		if err := h.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}

		committed = ev
		response = &TransitionWorkOrderResponse{
			WorkOrderID: w.ID(),
			FromStatus:  string(from),
			ToStatus:    string(to),
			Version:     w.Version(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, committed)
	return response, nil
}

func workOrderEventType(to workorder.Status) (string, bool) {
	switch to {
	case workorder.StatusScheduled:
		return events.TypeWorkOrderScheduled, true
	case workorder.StatusIssued:
		return events.TypeWorkOrderIssued, true
	case workorder.StatusPicked:
		return events.TypeWorkOrderPicked, true
	case workorder.StatusInProgress:
		return events.TypeWorkOrderStarted, true
	case workorder.StatusYielded:
		return events.TypeWorkOrderYielded, true
	case workorder.StatusCompleted:
		return events.TypeWorkOrderCompleted, true
	case workorder.StatusCancelled:
		return events.TypeWorkOrderCancelled, true
	default:
		return "", false
	}
}
