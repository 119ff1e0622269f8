package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/workorder"
)

// GetWorkOrderQuery reads one work order.
type GetWorkOrderQuery struct {
	WorkOrderID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (GetWorkOrderQuery) CommandName() string { return "get_work_order_query" }

// WorkOrderPartView is one component requirement in the read model.
type WorkOrderPartView struct {
	ItemID   string
	Quantity int
}

// WorkOrderView is the work-order read model. Version lets callers issue a
// follow-up command without a second read.
type WorkOrderView struct {
	WorkOrderID    string
	BOMID          string
	Title          string
	Description    string
	Priority       string
	Status         string
	Assignee       string
	DueDate        *time.Time
	EstimatedHours float64
	ActualHours    float64
	Parts          []WorkOrderPartView
	Version        int
	StartedAt      *time.Time
	YieldedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GetWorkOrderQueryHandler serves single work-order reads.
type GetWorkOrderQueryHandler struct {
	workOrders workorder.Repository
}

// NewGetWorkOrderQueryHandler creates the handler.
func NewGetWorkOrderQueryHandler(workOrders workorder.Repository) *GetWorkOrderQueryHandler {
	return &GetWorkOrderQueryHandler{workOrders: workOrders}
}

// Handle builds the work-order read model.
func (h *GetWorkOrderQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*GetWorkOrderQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	w, err := h.workOrders.FindByID(ctx, q.WorkOrderID)
	if err != nil {
		return nil, err
	}

	view := &WorkOrderView{
		WorkOrderID:    w.ID(),
		BOMID:          w.BOMID(),
		Title:          w.Title(),
		Description:    w.Description(),
		Priority:       string(w.Priority()),
		Status:         string(w.Status()),
		Assignee:       w.Assignee(),
		DueDate:        w.DueDate(),
		EstimatedHours: w.EstimatedHours(),
		ActualHours:    w.ActualHours(),
		Version:        w.Version(),
		StartedAt:      w.StartedAt(),
		YieldedAt:      w.YieldedAt(),
		CompletedAt:    w.CompletedAt(),
		CreatedAt:      w.CreatedAt(),
		UpdatedAt:      w.UpdatedAt(),
	}
	for _, p := range w.Parts() {
		view.Parts = append(view.Parts, WorkOrderPartView{ItemID: p.ItemID, Quantity: p.Quantity})
	}
	return view, nil
}

// WorkOrderNotesQuery reads the notes of a work order.
type WorkOrderNotesQuery struct {
	WorkOrderID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (WorkOrderNotesQuery) CommandName() string { return "work_order_notes_query" }

// WorkOrderNotesQueryHandler serves the note log.
type WorkOrderNotesQueryHandler struct {
	workOrders workorder.Repository
}

// NewWorkOrderNotesQueryHandler creates the handler.
func NewWorkOrderNotesQueryHandler(workOrders workorder.Repository) *WorkOrderNotesQueryHandler {
	return &WorkOrderNotesQueryHandler{workOrders: workOrders}
}

// Handle returns the notes oldest first.
func (h *WorkOrderNotesQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*WorkOrderNotesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.workOrders.Notes(ctx, q.WorkOrderID)
}
