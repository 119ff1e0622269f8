package returns_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/domain/returns"
	"github.com/harborline/omscore/internal/domain/shared"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestReturn(t *testing.T) *returns.Return {
	t.Helper()
	r, err := returns.New("ret-1", "ord-1", "wrong size", []returns.Item{
		{ID: "ri-1", ItemID: "SKU-1", LocationID: "MAIN", Quantity: 2, RestockEligible: true},
		{ID: "ri-2", ItemID: "SKU-2", LocationID: "MAIN", Quantity: 1, RestockEligible: true},
	}, now)
	require.NoError(t, err)
	return r
}

func TestReturn_NewRequiresItems(t *testing.T) {
	_, err := returns.New("ret-1", "ord-1", "reason", nil, now)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestReturn_ApproveRejectExclusive(t *testing.T) {
	r := newTestReturn(t)
	require.NoError(t, r.TransitionTo(returns.StatusApproved, now))

	err := r.TransitionTo(returns.StatusRejected, now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestReturn_ReceiveRequiresApproved(t *testing.T) {
	r := newTestReturn(t)

	err := r.Receive(map[string]returns.ItemCondition{"ri-1": returns.ConditionNew}, now)

	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)
}

func TestReturn_ReceiveDamagedLosesEligibility(t *testing.T) {
	r := newTestReturn(t)
	require.NoError(t, r.TransitionTo(returns.StatusApproved, now))

	require.NoError(t, r.Receive(map[string]returns.ItemCondition{
		"ri-1": returns.ConditionDamaged,
		"ri-2": returns.ConditionNew,
	}, now))

	assert.Equal(t, returns.StatusReceived, r.Status())
	eligible := r.RestockableItems()
	require.Len(t, eligible, 1)
	assert.Equal(t, "ri-2", eligible[0].ID)
}

func TestReturn_RefundRequiresReceived(t *testing.T) {
	r := newTestReturn(t)

	err := r.Refund(decimal.NewFromInt(20), now)
	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)

	require.NoError(t, r.TransitionTo(returns.StatusApproved, now))
	require.NoError(t, r.Receive(nil, now))
	require.NoError(t, r.Refund(decimal.NewFromInt(20), now))

	assert.Equal(t, returns.StatusRefunded, r.Status())
	assert.True(t, decimal.NewFromInt(20).Equal(r.RefundAmount()))
}

func TestReturn_RefundRejectsNegativeAmount(t *testing.T) {
	r := newTestReturn(t)
	require.NoError(t, r.TransitionTo(returns.StatusApproved, now))
	require.NoError(t, r.Receive(nil, now))

	err := r.Refund(decimal.NewFromInt(-1), now)

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestReturn_MarkRestockedRequiresCompleted(t *testing.T) {
	r := newTestReturn(t)
	require.NoError(t, r.TransitionTo(returns.StatusApproved, now))
	require.NoError(t, r.Receive(nil, now))
	require.NoError(t, r.Refund(decimal.NewFromInt(10), now))

	err := r.MarkRestocked("ri-1", now)
	var isErr *shared.InvalidStatusError
	require.ErrorAs(t, err, &isErr)

	require.NoError(t, r.TransitionTo(returns.StatusCompleted, now))
	require.NoError(t, r.MarkRestocked("ri-1", now))

	eligible := r.RestockableItems()
	require.Len(t, eligible, 1)
	assert.Equal(t, "ri-2", eligible[0].ID)
}

func TestReturn_CancelFromRequestedAndApproved(t *testing.T) {
	r := newTestReturn(t)
	require.NoError(t, r.TransitionTo(returns.StatusCancelled, now))

	r2 := newTestReturn(t)
	require.NoError(t, r2.TransitionTo(returns.StatusApproved, now))
	require.NoError(t, r2.TransitionTo(returns.StatusCancelled, now))
}
