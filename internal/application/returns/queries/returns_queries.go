// Package queries holds the return and warranty read operations.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
)

// GetReturnQuery reads one return with its items.
type GetReturnQuery struct {
	ReturnID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (GetReturnQuery) CommandName() string { return "get_return_query" }

// ReturnItemView is one returned line in the read model.
type ReturnItemView struct {
	ReturnItemID    string
	OrderItemID     string
	ItemID          string
	LocationID      string
	Quantity        int
	Condition       string
	RestockEligible bool
	Restocked       bool
}

// ReturnView is the return read model.
type ReturnView struct {
	ReturnID     string
	OrderID      string
	Reason       string
	Status       string
	RefundAmount decimal.Decimal
	Items        []ReturnItemView
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GetReturnQueryHandler serves single-return reads.
type GetReturnQueryHandler struct {
	rets returns.Repository
}

// NewGetReturnQueryHandler creates the handler.
func NewGetReturnQueryHandler(rets returns.Repository) *GetReturnQueryHandler {
	return &GetReturnQueryHandler{rets: rets}
}

// Handle builds the return read model.
func (h *GetReturnQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*GetReturnQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	r, err := h.rets.FindByID(ctx, q.ReturnID)
	if err != nil {
		return nil, err
	}

	view := &ReturnView{
		ReturnID:     r.ID(),
		OrderID:      r.OrderID(),
		Reason:       r.Reason(),
		Status:       string(r.Status()),
		RefundAmount: r.RefundAmount(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
	for _, item := range r.Items() {
		view.Items = append(view.Items, ReturnItemView{
			ReturnItemID:    item.ID,
			OrderItemID:     item.OrderItemID,
			ItemID:          item.ItemID,
			LocationID:      item.LocationID,
			Quantity:        item.Quantity,
			Condition:       string(item.Condition),
			RestockEligible: item.RestockEligible,
			Restocked:       item.Restocked,
		})
	}
	return view, nil
}

// GetWarrantyQuery reads one warranty. Status is derived at query time, so an
// active warranty past its end date reads expired without a write.
type GetWarrantyQuery struct {
	WarrantyID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (GetWarrantyQuery) CommandName() string { return "get_warranty_query" }

// WarrantyView is the warranty read model.
type WarrantyView struct {
	WarrantyID string
	ProductID  string
	CustomerID string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	Terms      string
	CreatedAt  time.Time
}

// GetWarrantyQueryHandler serves single-warranty reads.
type GetWarrantyQueryHandler struct {
	warranties returns.WarrantyRepository
	clock      shared.Clock
}

// NewGetWarrantyQueryHandler creates the handler.
func NewGetWarrantyQueryHandler(warranties returns.WarrantyRepository, clock shared.Clock) *GetWarrantyQueryHandler {
	return &GetWarrantyQueryHandler{warranties: warranties, clock: clock}
}

// Handle builds the warranty read model with the derived status.
func (h *GetWarrantyQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*GetWarrantyQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	w, err := h.warranties.FindByID(ctx, q.WarrantyID)
	if err != nil {
		return nil, err
	}

	return &WarrantyView{
		WarrantyID: w.ID(),
		ProductID:  w.ProductID(),
		CustomerID: w.CustomerID(),
		StartDate:  w.StartDate(),
		EndDate:    w.EndDate(),
		Status:     string(w.StatusAt(h.clock.Now())),
		Terms:      w.Terms(),
		CreatedAt:  w.CreatedAt(),
	}, nil
}
