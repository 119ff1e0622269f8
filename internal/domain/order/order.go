package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/domain/shared"
)

// Item is an order line. Lines are immutable once the order leaves pending,
// except through the explicit remove-item path which rewrites totals.
type Item struct {
	ID        string
	OrderID   string
	SKU       string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// TotalPrice is quantity x unit price, pre-tax.
func (i Item) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Note is an append-only annotation on an order.
type Note struct {
	ID        string
	OrderID   string
	Note      string
	CreatedBy string
	CreatedAt time.Time
}

// HistoryEntry records one status transition; together the entries make the
// current status derivable from history.
type HistoryEntry struct {
	OrderID    string
	FromStatus Status
	ToStatus   Status
	Note       string
	ChangedAt  time.Time
}

// Order is the aggregate root. Items, notes and history rows belong to it and
// are only written through its commands. Related aggregates (shipments,
// returns) are referenced by id only.
type Order struct {
	id              string
	customerID      string
	status          Status
	currency        string
	items           []Item
	taxAmount       decimal.Decimal
	discountAmount  decimal.Decimal
	shippingAddress string
	billingAddress  string
	paymentMethod   string
	createdAt       time.Time
	updatedAt       time.Time
}

// New creates a pending order with its initial lines. At least one line is
// required and every line must carry a positive quantity.
func New(id, customerID, currency string, items []Item, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.NewValidationError("items", "order requires at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("items", "item quantity must be positive: "+item.SKU)
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("items", "item unit price must not be negative: "+item.SKU)
		}
	}
	return &Order{
		id:             id,
		customerID:     customerID,
		status:         StatusPending,
		currency:       currency,
		items:          items,
		taxAmount:      decimal.Zero,
		discountAmount: decimal.Zero,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Restore reconstructs an order from persistence.
func Restore(id, customerID string, status Status, currency string, items []Item,
	tax, discount decimal.Decimal, shippingAddr, billingAddr, paymentMethod string,
	createdAt, updatedAt time.Time) *Order {
	return &Order{
		id:              id,
		customerID:      customerID,
		status:          status,
		currency:        currency,
		items:           items,
		taxAmount:       tax,
		discountAmount:  discount,
		shippingAddress: shippingAddr,
		billingAddress:  billingAddr,
		paymentMethod:   paymentMethod,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (o *Order) ID() string                      { return o.id }
func (o *Order) CustomerID() string              { return o.customerID }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) Currency() string                { return o.currency }
func (o *Order) Items() []Item                   { return o.items }
func (o *Order) TaxAmount() decimal.Decimal      { return o.taxAmount }
func (o *Order) DiscountAmount() decimal.Decimal { return o.discountAmount }
func (o *Order) ShippingAddress() string         { return o.shippingAddress }
func (o *Order) BillingAddress() string          { return o.billingAddress }
func (o *Order) PaymentMethod() string           { return o.paymentMethod }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }

// Subtotal is the sum of line totals, pre-tax and pre-discount.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// TotalAmount = subtotal + tax - discount.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.Subtotal().Add(o.taxAmount).Sub(o.discountAmount)
}

// TransitionTo moves the order to a new status, enforcing the matrix.
func (o *Order) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(o.status, to) {
		return shared.NewInvalidStatusError("order", string(o.status), string(to))
	}
	o.status = to
	o.updatedAt = now
	return nil
}

// itemsMutable reports whether lines may change in the current status.
func (o *Order) itemsMutable() bool {
	return o.status == StatusPending || o.status == StatusOnHold
}

// AddItem appends a line. Legal only in pending or on_hold.
func (o *Order) AddItem(item Item, now time.Time) error {
	if !o.itemsMutable() {
		return shared.NewInvalidStatusError("order", string(o.status), "item_added")
	}
	if item.Quantity <= 0 {
		return shared.NewValidationError("quantity", "item quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return shared.NewValidationError("unit_price", "item unit price must not be negative")
	}
	o.items = append(o.items, item)
	o.updatedAt = now
	return nil
}

// RemoveItem deletes a line by id and returns it. Legal only in pending or
// on_hold; removing the last line is rejected.
func (o *Order) RemoveItem(itemID string, now time.Time) (Item, error) {
	if !o.itemsMutable() {
		return Item{}, shared.NewInvalidStatusError("order", string(o.status), "item_removed")
	}
	if len(o.items) == 1 && o.items[0].ID == itemID {
		return Item{}, shared.NewBusinessRuleError("cannot remove the last item from order %s", o.id)
	}
	for i, item := range o.items {
		if item.ID == itemID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			o.updatedAt = now
			return item, nil
		}
	}
	return Item{}, shared.NewNotFoundError("order item", itemID)
}

// UpdateShippingAddress is allowed until the order ships.
func (o *Order) UpdateShippingAddress(address string, now time.Time) error {
	switch o.status {
	case StatusShipped, StatusDelivered, StatusReturned, StatusCancelled, StatusRefunded:
		return shared.NewInvalidStatusError("order", string(o.status), "shipping_address_updated")
	}
	o.shippingAddress = address
	o.updatedAt = now
	return nil
}

// UpdateBillingAddress is allowed until the order reaches a terminal state.
func (o *Order) UpdateBillingAddress(address string, now time.Time) error {
	if IsTerminal(o.status) {
		return shared.NewInvalidStatusError("order", string(o.status), "billing_address_updated")
	}
	o.billingAddress = address
	o.updatedAt = now
	return nil
}

// UpdatePaymentMethod is allowed until the order ships.
func (o *Order) UpdatePaymentMethod(method string, now time.Time) error {
	switch o.status {
	case StatusShipped, StatusDelivered, StatusReturned, StatusCancelled, StatusRefunded:
		return shared.NewInvalidStatusError("order", string(o.status), "payment_method_updated")
	}
	o.paymentMethod = method
	o.updatedAt = now
	return nil
}
