package order_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.New("ord-1", "cust-1", "USD", []order.Item{
		{ID: "line-1", OrderID: "ord-1", SKU: "SKU-1", Quantity: 2, UnitPrice: decimal.NewFromFloat(9.99)},
		{ID: "line-2", OrderID: "ord-1", SKU: "SKU-2", Quantity: 1, UnitPrice: decimal.NewFromInt(25)},
	}, now)
	require.NoError(t, err)
	return o
}

func TestOrder_NewRequiresItems(t *testing.T) {
	_, err := order.New("ord-1", "cust-1", "USD", nil, now)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestOrder_NewRejectsNonPositiveQuantity(t *testing.T) {
	_, err := order.New("ord-1", "cust-1", "USD", []order.Item{
		{ID: "line-1", SKU: "SKU-1", Quantity: 0, UnitPrice: decimal.NewFromInt(5)},
	}, now)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestOrder_Totals(t *testing.T) {
	o := newTestOrder(t)

	assert.True(t, decimal.NewFromFloat(44.98).Equal(o.Subtotal()))
	assert.True(t, decimal.NewFromFloat(44.98).Equal(o.TotalAmount()))
}

func TestOrder_TransitionMatrix(t *testing.T) {
	cases := []struct {
		from    order.Status
		to      order.Status
		allowed bool
	}{
		{order.StatusPending, order.StatusProcessing, true},
		{order.StatusPending, order.StatusOnHold, true},
		{order.StatusPending, order.StatusShipped, false},
		{order.StatusProcessing, order.StatusShipped, true},
		{order.StatusOnHold, order.StatusProcessing, true},
		{order.StatusOnHold, order.StatusShipped, false},
		{order.StatusShipped, order.StatusDelivered, true},
		{order.StatusShipped, order.StatusCancelled, false},
		{order.StatusDelivered, order.StatusReturned, true},
		{order.StatusReturned, order.StatusRefunded, true},
		{order.StatusCancelled, order.StatusPending, false},
		{order.StatusRefunded, order.StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, order.CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrder_TransitionToIllegal(t *testing.T) {
	o := newTestOrder(t)

	err := o.TransitionTo(order.StatusShipped, now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, order.StatusPending, o.Status())
}

func TestOrder_TerminalStates(t *testing.T) {
	assert.True(t, order.IsTerminal(order.StatusCancelled))
	assert.True(t, order.IsTerminal(order.StatusRefunded))
	assert.False(t, order.IsTerminal(order.StatusDelivered))
	assert.False(t, order.IsTerminal(order.StatusPending))
}

func TestOrder_ItemsFrozenAfterProcessing(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusProcessing, now))

	err := o.AddItem(order.Item{ID: "line-3", SKU: "SKU-3", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, now)
	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)

	_, err = o.RemoveItem("line-1", now)
	require.ErrorAs(t, err, &isErr)
}

func TestOrder_ItemsMutableOnHold(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusOnHold, now))

	err := o.AddItem(order.Item{ID: "line-3", SKU: "SKU-3", Quantity: 3, UnitPrice: decimal.NewFromInt(2)}, now)

	require.NoError(t, err)
	assert.Len(t, o.Items(), 3)
}

func TestOrder_RemoveLastItemRejected(t *testing.T) {
	o, err := order.New("ord-1", "cust-1", "USD", []order.Item{
		{ID: "line-1", SKU: "SKU-1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	}, now)
	require.NoError(t, err)

	_, err = o.RemoveItem("line-1", now)

	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)
}

func TestOrder_RemoveItemReturnsLine(t *testing.T) {
	o := newTestOrder(t)

	removed, err := o.RemoveItem("line-2", now)

	require.NoError(t, err)
	assert.Equal(t, "SKU-2", removed.SKU)
	assert.Len(t, o.Items(), 1)
	assert.True(t, decimal.NewFromFloat(19.98).Equal(o.Subtotal()))
}

func TestOrder_ShippingAddressLockedAfterShipment(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusProcessing, now))
	require.NoError(t, o.UpdateShippingAddress("12 Pier Rd", now))
	require.NoError(t, o.TransitionTo(order.StatusShipped, now))

	err := o.UpdateShippingAddress("99 Dock St", now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "12 Pier Rd", o.ShippingAddress())
}

func TestOrder_BillingAddressAllowedUntilTerminal(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.TransitionTo(order.StatusProcessing, now))
	require.NoError(t, o.TransitionTo(order.StatusShipped, now))
	require.NoError(t, o.TransitionTo(order.StatusDelivered, now))

	// Delivered is not terminal: billing edits still pass.
	require.NoError(t, o.UpdateBillingAddress("7 Ledger Ln", now))

	require.NoError(t, o.TransitionTo(order.StatusRefunded, now))
	err := o.UpdateBillingAddress("8 Ledger Ln", now)
	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("on_hold")
	require.NoError(t, err)
	assert.Equal(t, order.StatusOnHold, s)

	_, err = order.ParseStatus("teleported")
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}
