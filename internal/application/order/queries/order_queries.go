// Package queries holds the order read operations.
package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/order"
)

// GetOrderQuery reads one order with its lines.
type GetOrderQuery struct {
	OrderID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (GetOrderQuery) CommandName() string { return "get_order_query" }

// OrderLineView is one line of the order read model.
type OrderLineView struct {
	ItemID    string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderView is the order read model.
type OrderView struct {
	OrderID         string
	CustomerID      string
	Status          string
	Currency        string
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Lines           []OrderLineView
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GetOrderQueryHandler serves single-order reads.
type GetOrderQueryHandler struct {
	orders order.Repository
}

// NewGetOrderQueryHandler creates the handler.
func NewGetOrderQueryHandler(orders order.Repository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{orders: orders}
}

// Handle builds the order read model.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*GetOrderQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	o, err := h.orders.FindByID(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}

	view := &OrderView{
		OrderID:         o.ID(),
		CustomerID:      o.CustomerID(),
		Status:          string(o.Status()),
		Currency:        o.Currency(),
		Subtotal:        o.Subtotal(),
		TaxAmount:       o.TaxAmount(),
		DiscountAmount:  o.DiscountAmount(),
		TotalAmount:     o.TotalAmount(),
		ShippingAddress: o.ShippingAddress(),
		BillingAddress:  o.BillingAddress(),
		PaymentMethod:   o.PaymentMethod(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
	for _, item := range o.Items() {
		view.Lines = append(view.Lines, OrderLineView{
			ItemID:    item.ID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return view, nil
}

// OrderHistoryQuery reads the status transition log of an order.
type OrderHistoryQuery struct {
	OrderID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (OrderHistoryQuery) CommandName() string { return "order_history_query" }

// OrderHistoryQueryHandler serves the transition log.
type OrderHistoryQueryHandler struct {
	orders order.Repository
}

// NewOrderHistoryQueryHandler creates the handler.
func NewOrderHistoryQueryHandler(orders order.Repository) *OrderHistoryQueryHandler {
	return &OrderHistoryQueryHandler{orders: orders}
}

// Handle returns the transitions oldest first.
func (h *OrderHistoryQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*OrderHistoryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.orders.History(ctx, q.OrderID)
}

// OrderPaymentsQuery reads the payment records of an order.
type OrderPaymentsQuery struct {
	OrderID string `validate:"required"`
}

// CommandName identifies the query for metrics and logs.
func (OrderPaymentsQuery) CommandName() string { return "order_payments_query" }

// OrderPaymentsQueryHandler serves the payment log.
type OrderPaymentsQueryHandler struct {
	orders order.Repository
}

// NewOrderPaymentsQueryHandler creates the handler.
func NewOrderPaymentsQueryHandler(orders order.Repository) *OrderPaymentsQueryHandler {
	return &OrderPaymentsQueryHandler{orders: orders}
}

// Handle returns the payments oldest first.
func (h *OrderPaymentsQueryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	q, ok := request.(*OrderPaymentsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.orders.Payments(ctx, q.OrderID)
}
