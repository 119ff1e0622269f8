// Package commands holds the order write operations.
package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
)

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	SKU       string          `validate:"required"`
	ProductID string
	Quantity  int             `validate:"required,gt=0"`
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// CreateOrderCommand opens a pending order for a customer.
type CreateOrderCommand struct {
	CustomerID      string           `validate:"required"`
	Currency        string           `validate:"required,len=3"`
	Items           []OrderItemInput `validate:"required,min=1,dive"`
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
}

// CommandName identifies the command for metrics and logs.
func (CreateOrderCommand) CommandName() string { return "create_order" }

// CreateOrderResponse returns the new order's identity and totals.
type CreateOrderResponse struct {
	OrderID     string
	Status      string
	TotalAmount decimal.Decimal
}

// CreateOrderHandler handles order creation.
type CreateOrderHandler struct {
	txManager common.TransactionManager
	orders    order.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewCreateOrderHandler creates the handler.
func NewCreateOrderHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *CreateOrderHandler {
	return &CreateOrderHandler{
		txManager: txManager,
		orders:    orders,
		enqueuer:  enqueuer,
		publisher: publisher,
		clock:     clock,
	}
}

// Handle creates the order and enqueues OrderCreated atomically.
func (h *CreateOrderHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreateOrderCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	now := h.clock.Now()
	orderID := uuid.New().String()

	items := make([]order.Item, len(cmd.Items))
	for i, in := range cmd.Items {
		items[i] = order.Item{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			SKU:       in.SKU,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			TaxRate:   in.TaxRate,
		}
	}

	o, err := order.New(orderID, cmd.CustomerID, cmd.Currency, items, now)
	if err != nil {
		return nil, err
	}
	if cmd.ShippingAddress != "" {
		if err := o.UpdateShippingAddress(cmd.ShippingAddress, now); err != nil {
			return nil, err
		}
	}
	if cmd.BillingAddress != "" {
		if err := o.UpdateBillingAddress(cmd.BillingAddress, now); err != nil {
			return nil, err
		}
	}
	if cmd.PaymentMethod != "" {
		if err := o.UpdatePaymentMethod(cmd.PaymentMethod, now); err != nil {
			return nil, err
		}
	}

	lines := make([]events.OrderLine, len(items))
	for i, item := range items {
		lines[i] = events.OrderLine{SKU: item.SKU, Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	ev := events.NewOrderCreated(orderID, cmd.CustomerID, cmd.Currency, o.TotalAmount(), lines)

	err = h.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := h.orders.Add(ctx, o); err != nil {
			return err
		}
		return h.enqueuer.Enqueue(ctx, ev)
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, h.publisher, ev)
	return &CreateOrderResponse{
		OrderID:     orderID,
		Status:      string(o.Status()),
		TotalAmount: o.TotalAmount(),
	}, nil
}
