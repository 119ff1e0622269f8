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

// AddOrderItemCommand appends a line to a pending or held order.
type AddOrderItemCommand struct {
	OrderID   string `validate:"required"`
	SKU       string `validate:"required"`
	ProductID string
	Quantity  int `validate:"required,gt=0"`
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// CommandName identifies the command for metrics and logs.
func (AddOrderItemCommand) CommandName() string { return "add_order_item" }

// AddOrderItemHandler handles line additions.
type AddOrderItemHandler struct {
	deps orderWriteDeps
}

// orderWriteDeps bundles the shared collaborators of the small order
// mutation handlers.
type orderWriteDeps struct {
	txManager common.TransactionManager
	orders    order.Repository
	enqueuer  common.OutboxEnqueuer
	publisher common.EventPublisher
	clock     shared.Clock
}

// NewAddOrderItemHandler creates the handler.
func NewAddOrderItemHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddOrderItemHandler {
	return &AddOrderItemHandler{deps: orderWriteDeps{txManager, orders, enqueuer, publisher, clock}}
}

// Handle appends the line and enqueues OrderItemAdded.
func (h *AddOrderItemHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddOrderItemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.OrderID, func(o *order.Order, now shared.Clock) (events.Event, error) {
		item := order.Item{
			ID:        uuid.New().String(),
			OrderID:   cmd.OrderID,
			SKU:       cmd.SKU,
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
			UnitPrice: cmd.UnitPrice,
			TaxRate:   cmd.TaxRate,
		}
		if err := o.AddItem(item, now.Now()); err != nil {
			return nil, err
		}
		return events.OrderItemAdded{
			OrderEvent:  events.OrderEvent{OrderID: o.ID()},
			SKU:         cmd.SKU,
			Quantity:    cmd.Quantity,
			UnitPrice:   cmd.UnitPrice,
			TotalAmount: o.TotalAmount(),
		}, nil
	})
}

// RemoveOrderItemCommand deletes a line from a pending or held order.
type RemoveOrderItemCommand struct {
	OrderID string `validate:"required"`
	ItemID  string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (RemoveOrderItemCommand) CommandName() string { return "remove_order_item" }

// RemoveOrderItemHandler handles line removals.
type RemoveOrderItemHandler struct {
	deps orderWriteDeps
}

// NewRemoveOrderItemHandler creates the handler.
func NewRemoveOrderItemHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *RemoveOrderItemHandler {
	return &RemoveOrderItemHandler{deps: orderWriteDeps{txManager, orders, enqueuer, publisher, clock}}
}

// Handle removes the line and enqueues OrderItemRemoved.
func (h *RemoveOrderItemHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RemoveOrderItemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.OrderID, func(o *order.Order, clock shared.Clock) (events.Event, error) {
		removed, err := o.RemoveItem(cmd.ItemID, clock.Now())
		if err != nil {
			return nil, err
		}
		return events.OrderItemRemoved{
			OrderEvent:  events.OrderEvent{OrderID: o.ID()},
			SKU:         removed.SKU,
			TotalAmount: o.TotalAmount(),
		}, nil
	})
}

// AddOrderNoteCommand appends a note to an order.
type AddOrderNoteCommand struct {
	OrderID   string `validate:"required"`
	Note      string `validate:"required"`
	CreatedBy string
}

// CommandName identifies the command for metrics and logs.
func (AddOrderNoteCommand) CommandName() string { return "add_order_note" }

// AddOrderNoteHandler handles note additions.
type AddOrderNoteHandler struct {
	deps orderWriteDeps
}

// NewAddOrderNoteHandler creates the handler.
func NewAddOrderNoteHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *AddOrderNoteHandler {
	return &AddOrderNoteHandler{deps: orderWriteDeps{txManager, orders, enqueuer, publisher, clock}}
}

// Handle writes the note row; no status change and no totals rewrite.
func (h *AddOrderNoteHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AddOrderNoteCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	var committed events.Event
	err := h.deps.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		now := h.deps.clock.Now()

		// Notes attach only to orders that exist.
		o, err := h.deps.orders.FindByID(ctx, cmd.OrderID)
		if err != nil {
			return err
		}

		note := &order.Note{
			ID:        uuid.New().String(),
			OrderID:   o.ID(),
			Note:      cmd.Note,
			CreatedBy: cmd.CreatedBy,
			CreatedAt: now,
		}
		if err := h.deps.orders.AddNote(ctx, note); err != nil {
			return err
		}

		ev := events.OrderNoteAdded{
			OrderEvent: events.OrderEvent{OrderID: o.ID()},
			NoteID:     note.ID,
			Note:       cmd.Note,
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
	return &OrderMutationResponse{OrderID: cmd.OrderID}, nil
}

// UpdateOrderAddressCommand rewrites the shipping or billing address.
type UpdateOrderAddressCommand struct {
	OrderID string `validate:"required"`
	Kind    string `validate:"required,oneof=shipping billing"`
	Address string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (UpdateOrderAddressCommand) CommandName() string { return "update_order_address" }

// UpdateOrderAddressHandler handles address rewrites.
type UpdateOrderAddressHandler struct {
	deps orderWriteDeps
}

// NewUpdateOrderAddressHandler creates the handler.
func NewUpdateOrderAddressHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *UpdateOrderAddressHandler {
	return &UpdateOrderAddressHandler{deps: orderWriteDeps{txManager, orders, enqueuer, publisher, clock}}
}

// Handle applies the address change under the status rules of its kind.
func (h *UpdateOrderAddressHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdateOrderAddressCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.OrderID, func(o *order.Order, clock shared.Clock) (events.Event, error) {
		now := clock.Now()
		eventType := events.TypeOrderShippingAddressUpdated
		if cmd.Kind == "billing" {
			eventType = events.TypeOrderBillingAddressUpdated
			if err := o.UpdateBillingAddress(cmd.Address, now); err != nil {
				return nil, err
			}
		} else {
			if err := o.UpdateShippingAddress(cmd.Address, now); err != nil {
				return nil, err
			}
		}
		return events.OrderAddressUpdated{
			OrderEvent: events.OrderEvent{OrderID: o.ID()},
			Type:       eventType,
			Address:    cmd.Address,
		}, nil
	})
}

// UpdatePaymentMethodCommand rewrites the payment method before shipping.
type UpdatePaymentMethodCommand struct {
	OrderID       string `validate:"required"`
	PaymentMethod string `validate:"required"`
}

// CommandName identifies the command for metrics and logs.
func (UpdatePaymentMethodCommand) CommandName() string { return "update_payment_method" }

// UpdatePaymentMethodHandler handles payment method changes.
type UpdatePaymentMethodHandler struct {
	deps orderWriteDeps
}

// NewUpdatePaymentMethodHandler creates the handler.
func NewUpdatePaymentMethodHandler(
	txManager common.TransactionManager,
	orders order.Repository,
	enqueuer common.OutboxEnqueuer,
	publisher common.EventPublisher,
	clock shared.Clock,
) *UpdatePaymentMethodHandler {
	return &UpdatePaymentMethodHandler{deps: orderWriteDeps{txManager, orders, enqueuer, publisher, clock}}
}

// Handle applies the change and enqueues OrderPaymentMethodUpdated.
func (h *UpdatePaymentMethodHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*UpdatePaymentMethodCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	return h.deps.mutate(ctx, cmd.OrderID, func(o *order.Order, clock shared.Clock) (events.Event, error) {
		if err := o.UpdatePaymentMethod(cmd.PaymentMethod, clock.Now()); err != nil {
			return nil, err
		}
		return events.OrderPaymentMethodUpdated{
			OrderEvent:    events.OrderEvent{OrderID: o.ID()},
			PaymentMethod: cmd.PaymentMethod,
		}, nil
	})
}

// OrderMutationResponse is the shared response of the small order mutations.
type OrderMutationResponse struct {
	OrderID     string
	TotalAmount decimal.Decimal
}

// mutate loads the order, applies fn, saves and enqueues the returned event,
// then publishes it after commit.
func (d orderWriteDeps) mutate(ctx context.Context, orderID string, fn func(o *order.Order, clock shared.Clock) (events.Event, error)) (common.Response, error) {
	var (
		response  *OrderMutationResponse
		committed events.Event
	)

	err := d.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := d.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		ev, err := fn(o, d.clock)
		if err != nil {
			return err
		}
		if err := d.orders.Save(ctx, o); err != nil {
			return err
		}
		if err := d.enqueuer.Enqueue(ctx, ev); err != nil {
			return err
		}
		committed = ev
		response = &OrderMutationResponse{OrderID: o.ID(), TotalAmount: o.TotalAmount()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.PublishAfterCommit(ctx, d.publisher, committed)
	return response, nil
}
