package events

import "github.com/shopspring/decimal"

// Order event type names.
const (
	TypeOrderCreated                 = "OrderCreated"
	TypeOrderUpdated                 = "OrderUpdated"
	TypeOrderProcessing              = "OrderProcessing"
	TypeOrderCancelled               = "OrderCancelled"
	TypeOrderShipped                 = "OrderShipped"
	TypeOrderDelivered               = "OrderDelivered"
	TypeOrderReturned                = "OrderReturned"
	TypeOrderRefunded                = "OrderRefunded"
	TypeOrderOnHold                  = "OrderOnHold"
	TypeOrderReleasedFromHold        = "OrderReleasedFromHold"
	TypeOrderItemAdded               = "OrderItemAdded"
	TypeOrderItemRemoved             = "OrderItemRemoved"
	TypeOrderNoteAdded               = "OrderNoteAdded"
	TypeOrderShippingAddressUpdated  = "OrderShippingAddressUpdated"
	TypeOrderBillingAddressUpdated   = "OrderBillingAddressUpdated"
	TypeOrderPaymentMethodUpdated    = "OrderPaymentMethodUpdated"
)

type OrderEvent struct {
	OrderID string `json:"order_id"`
}

func (e OrderEvent) AggregateType() string { return AggregateOrder }
func (e OrderEvent) AggregateID() string   { return e.OrderID }

// OrderLine is the per-item payload carried by order events.
type OrderLine struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreated struct {
	OrderEvent
	CustomerID  string          `json:"customer_id"`
	Currency    string          `json:"currency"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []OrderLine     `json:"lines"`
}

func (OrderCreated) EventType() string { return TypeOrderCreated }

func NewOrderCreated(orderID, customerID, currency string, total decimal.Decimal, lines []OrderLine) OrderCreated {
	return OrderCreated{
		OrderEvent:  OrderEvent{OrderID: orderID},
		CustomerID:  customerID,
		Currency:    currency,
		TotalAmount: total,
		Lines:       lines,
	}
}

type OrderUpdated struct {
	OrderEvent
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (OrderUpdated) EventType() string { return TypeOrderUpdated }

func NewOrderUpdated(orderID string, total decimal.Decimal) OrderUpdated {
	return OrderUpdated{OrderEvent: OrderEvent{OrderID: orderID}, TotalAmount: total}
}

// OrderStatusChanged covers the lifecycle transitions; Type discriminates
// which transition happened so each variant stays a distinct event type.
type OrderStatusChanged struct {
	OrderEvent
	Type       string `json:"-"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
}

func (e OrderStatusChanged) EventType() string { return e.Type }

func NewOrderStatusChanged(eventType, orderID, from, to, reason string) OrderStatusChanged {
	return OrderStatusChanged{
		OrderEvent: OrderEvent{OrderID: orderID},
		Type:       eventType,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
	}
}

type OrderItemAdded struct {
	OrderEvent
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (OrderItemAdded) EventType() string { return TypeOrderItemAdded }

type OrderItemRemoved struct {
	OrderEvent
	SKU         string          `json:"sku"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (OrderItemRemoved) EventType() string { return TypeOrderItemRemoved }

type OrderNoteAdded struct {
	OrderEvent
	NoteID string `json:"note_id"`
	Note   string `json:"note"`
}

func (OrderNoteAdded) EventType() string { return TypeOrderNoteAdded }

// OrderAddressUpdated covers shipping and billing address changes.
type OrderAddressUpdated struct {
	OrderEvent
	Type    string `json:"-"`
	Address string `json:"address"`
}

func (e OrderAddressUpdated) EventType() string { return e.Type }

type OrderPaymentMethodUpdated struct {
	OrderEvent
	PaymentMethod string `json:"payment_method"`
}

func (OrderPaymentMethodUpdated) EventType() string { return TypeOrderPaymentMethodUpdated }
