// Package commands holds the work-order write operations. Work orders are
// optimistically locked: every command carries the version its caller read,
// and a stale version surfaces as ConcurrentModificationError.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// WorkOrderPartInput is one BOM component requirement.
type WorkOrderPartInput struct {
	ItemID   string `validate:"required"`
	Quantity int    `validate:"required,gt=0"`
}

// CreateWorkOrderCommand opens a pending work order.
type CreateWorkOrderCommand struct {
	BOMID          string
	Title          string `validate:"required"`
	Description    string
	Priority       string `validate:"required"`
	Parts          []WorkOrderPartInput `validate:"dive"`
	DueDate        *time.Time
	EstimatedHours float64 `validate:"gte=0"`
}

// CommandName identifies the command for metrics and logs.
func (CreateWorkOrderCommand) CommandName() string { return "create_work_order" }

// CreateWorkOrderResponse returns the new work order's identity.
type CreateWorkOrderResponse struct {
	WorkOrderID string
	Status      string
	Version     int
}

// CreateWorkOrderHandler handles work-order creation.
type CreateWorkOrderHandler struct {
	txManager  common.TransactionManager
	workOrders workorder.Repository
	enqueuer   common.OutboxEnqueuer
	publisher  common.EventPublisher
	clock      shared.Clock
}

// NewCreateWorkOrderHandler creates the handler.
func NewCreateWorkOrderHandler(
	txManager common.TransactionManager,
	workOrders workorder.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CreateWorkOrderHandler {
	return &CreateWorkOrderHandler{
		txManager:  txManager,
		workOrders: workOrders,
		enqueuer:   enqueuer,
		publisher:  publisher,
		clock:      clock,
	}
}

// Handle validates the priority, creates the aggregate at version 1 and
// enqueues WorkOrderCreated.
func (h *CreateWorkOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateWorkOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	priority, err := workorder.ParsePriority(cmd.Priority)
	if err != nil {
		return nil, err
	}

	parts := make([]workorder.Part, len(cmd.Parts))
	for i, p := range cmd.Parts {
		parts[i] = workorder.Part{ItemID: p.ItemID, Quantity: p.Quantity}
	}

	now := h.clock.Now()
	w, err := workorder.New(
		uuid.New().String(), cmd.BOMID, cmd.Title, cmd.Description,
		priority, parts, cmd.DueDate, cmd.EstimatedHours, now)
	if err != nil {
		return nil, err
	}

	ev := events.WorkOrderCreated{
		WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: w.ID()},
		BOMID:          cmd.BOMID,
		Title:          cmd.Title,
		Priority:       string(priority),
	}

	err = h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.workOrders.Add(ctx, w); err != nil {
			return err
		}
		return h.enqueuer.Enqueue(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, ev)
	return &CreateWorkOrderResponse{
		WorkOrderID: w.ID(),
		Status:      string(w.Status()),
		Version:     w.Version(),
	}, nil
}
