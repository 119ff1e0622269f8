package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBalance_AdjustPositive(t *testing.T) {
	b := inventory.NewBalance("SKU-1", "MAIN", now)

	err := b.Adjust(50, now)

	require.NoError(t, err)
	assert.Equal(t, 50, b.OnHand())
	assert.Equal(t, 50, b.Available())
}

func TestBalance_AdjustRejectsNegativeOnHand(t *testing.T) {
	b := inventory.NewBalance("SKU-1", "MAIN", now)
	require.NoError(t, b.Adjust(10, now))

	err := b.Adjust(-11, now)

	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)
	assert.Equal(t, 10, b.OnHand())
}

func TestBalance_AdjustRejectsNegativeAvailable(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 10, 8, now)

	// On-hand would stay positive (4) but available would go to -4.
	err := b.Adjust(-6, now)

	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)
	assert.Equal(t, 10, b.OnHand())
	assert.Equal(t, 2, b.Available())
}

func TestBalance_ReserveAndRelease(t *testing.T) {
	b := inventory.NewBalance("SKU-1", "MAIN", now)
	require.NoError(t, b.Adjust(20, now))

	require.NoError(t, b.Reserve(15, now))
	assert.Equal(t, 20, b.OnHand())
	assert.Equal(t, 15, b.Allocated())
	assert.Equal(t, 5, b.Available())

	require.NoError(t, b.Release(10, now))
	assert.Equal(t, 5, b.Allocated())
	assert.Equal(t, 15, b.Available())
}

func TestBalance_ReserveInsufficient(t *testing.T) {
	b := inventory.NewBalance("SKU-1", "MAIN", now)
	require.NoError(t, b.Adjust(5, now))

	err := b.Reserve(6, now)

	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)
	assert.Equal(t, 0, b.Allocated())
}

func TestBalance_ReleaseExceedsAllocation(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 20, 5, now)

	err := b.Release(6, now)

	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)
}

func TestBalance_AllocateConsumesStock(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 20, 8, now)

	require.NoError(t, b.Allocate(8, now))

	assert.Equal(t, 12, b.OnHand())
	assert.Equal(t, 0, b.Allocated())
	assert.Equal(t, 12, b.Available())
}

func TestBalance_DeallocateRestoresReservation(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 12, 0, now)

	require.NoError(t, b.Deallocate(8, now))

	assert.Equal(t, 20, b.OnHand())
	assert.Equal(t, 8, b.Allocated())
	assert.Equal(t, 12, b.Available())
}

func TestBalance_TransferOutKeepsAllocatedStock(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 10, 7, now)

	// Free portion is 3; allocated units never leave the location.
	err := b.TransferOut(4, now)
	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)

	require.NoError(t, b.TransferOut(3, now))
	assert.Equal(t, 7, b.OnHand())
	assert.Equal(t, 7, b.Allocated())
}

func TestBalance_SetCountedBelowAllocationRejected(t *testing.T) {
	b := inventory.RestoreBalance("SKU-1", "MAIN", 10, 6, now)

	err := b.SetCounted(5, now)
	var brErr *shared.BusinessRuleError
	require.ErrorAs(t, err, &brErr)

	require.NoError(t, b.SetCounted(6, now))
	assert.Equal(t, 6, b.OnHand())
	assert.Equal(t, 0, b.Available())
}
