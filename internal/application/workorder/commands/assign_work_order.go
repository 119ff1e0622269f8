package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// AssignWorkOrderCommand puts a technician on a work order.
type AssignWorkOrderCommand struct {
	WorkOrderID string `validate:"required"`
	Assignee    string `validate:"required"`
	Version     int    `validate:"required,gt=0"`
}

// CommandName identifies the command for metrics and logs.
func (AssignWorkOrderCommand) CommandName() string { return "assign_work_order" }

// AssignWorkOrderHandler handles assignments.
type AssignWorkOrderHandler struct {
	deps workOrderWriteDeps
}

// workOrderWriteDeps bundles the shared collaborators of the small
// work-order mutation handlers.
type workOrderWriteDeps struct {
	txManager  common.TransactionManager
	workOrders workorder.Repository
	enqueuer   common.OutboxEnqueuer
	publisher  common.EventPublisher
	clock      shared.Clock
}

// NewAssignWorkOrderHandler creates the handler.
func NewAssignWorkOrderHandler(
	txManager common.TransactionManager,
	workOrders workorder.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AssignWorkOrderHandler {
	return &AssignWorkOrderHandler{deps: workOrderWriteDeps{txManager, workOrders, enqueuer, publisher, clock}}
}

// Handle sets the assignee under the version guard.
func (h *AssignWorkOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AssignWorkOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.WorkOrderID, cmd.Version, func(w *workorder.WorkOrder, clock shared.Clock) (events.Event, error) {
		if err := w.Assign(cmd.Assignee, clock.Now()); err != nil {
			return nil, err
		}
		return events.WorkOrderAssigned{
			WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: w.ID()},
			Assignee:       cmd.Assignee,
		}, nil
	})
}

// UnassignWorkOrderCommand clears the assignee of a work order.
type UnassignWorkOrderCommand struct {
	WorkOrderID string `validate:"required"`
	Version     int    `validate:"required,gt=0"`
}

// CommandName identifies the command for metrics and logs.
func (UnassignWorkOrderCommand) CommandName() string { return "unassign_work_order" }

// UnassignWorkOrderHandler handles unassignments.
type UnassignWorkOrderHandler struct {
	deps workOrderWriteDeps
}

// NewUnassignWorkOrderHandler creates the handler.
func NewUnassignWorkOrderHandler(
	txManager common.TransactionManager,
	workOrders workorder.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *UnassignWorkOrderHandler {
	return &UnassignWorkOrderHandler{deps: workOrderWriteDeps{txManager, workOrders, enqueuer, publisher, clock}}
}

// Handle clears the assignee under the version guard.
func (h *UnassignWorkOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UnassignWorkOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.WorkOrderID, cmd.Version, func(w *workorder.WorkOrder, clock shared.Clock) (events.Event, error) {
		previous, err := w.Unassign(clock.Now())
		if err != nil {
			return nil, err
		}
		return events.WorkOrderUnassigned{
			WorkOrderEvent:   events.WorkOrderEvent{WorkOrderID: w.ID()},
			PreviousAssignee: previous,
		}, nil
	})
}

// AddWorkOrderNoteCommand appends a note to a work order. Notes do not touch
// the aggregate row, so no version is required.
type AddWorkOrderNoteCommand struct {
	WorkOrderID string `validate:"required"`
	Note        string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (AddWorkOrderNoteCommand) CommandName() string { return "add_work_order_note" }

// AddWorkOrderNoteHandler handles note additions.
type AddWorkOrderNoteHandler struct {
	deps workOrderWriteDeps
}

// NewAddWorkOrderNoteHandler creates the handler.
func NewAddWorkOrderNoteHandler(
	txManager common.TransactionManager,
	workOrders workorder.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddWorkOrderNoteHandler {
	return &AddWorkOrderNoteHandler{deps: workOrderWriteDeps{txManager, workOrders, enqueuer, publisher, clock}}
}

// Handle writes the note row; the work order itself is untouched.
func (h *AddWorkOrderNoteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddWorkOrderNoteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var committed events.Event
	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		w, err := h.deps.workOrders.FindByID(ctx, cmd.WorkOrderID)
		if err != nil {
			return err
		}

		note := &workorder.Note{
			ID:          uuid.New().String(),
			WorkOrderID: w.ID(),
			Note:        cmd.Note,
			CreatedAt:   h.deps.clock.Now(),
		}
		if err := h.deps.workOrders.AddNote(ctx, note); err != nil {
			return err
		}

		ev := events.WorkOrderNoteAdded{
			WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: w.ID()},
			NoteID:         note.ID,
			Note:           cmd.Note,
		}
		if err := h.deps.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.deps.publisher, committed)
	return &WorkOrderMutationResponse{WorkOrderID: cmd.WorkOrderID}, nil
}

// WorkOrderMutationResponse is the shared response of the small work-order
// mutations.
type WorkOrderMutationResponse struct {
	WorkOrderID string
	Version     int
}

// mutate loads the work order, checks the caller's version, applies fn, does
// the conditional write and enqueues the returned event.
func (d workOrderWriteDeps) mutate(ctx context.Context, workOrderID string, version int, fn func(w *workorder.WorkOrder, clock shared.Clock) (events.Event, error)) (common.Response, error) {
	var (
		response  *WorkOrderMutationResponse
		committed events.Event
	)

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		w, err := d.workOrders.FindByID(ctx, workOrderID)
		if err != nil {
			return err
		}
		if err := w.CheckVersion(version); err != nil {
			return err
		}
		ev, err := fn(w, d.clock)
		if err != nil {
			return err
		}
		if err := d.workOrders.SaveVersioned(ctx, w, version); err != nil {
			return err
		}
		if err := d.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		response = &WorkOrderMutationResponse{WorkOrderID: w.ID(), Version: w.Version()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, d.publisher, committed)
	return response, nil
}
