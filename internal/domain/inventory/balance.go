package inventory

import (
	"time"

	"github.com/harborline/omscore/internal/domain/shared"
)

// Balance is the per-(item, location) stock position. The row is created
// lazily on the first positive adjustment and may exist with all-zero
// quantities.
//
// Invariants (hold after every mutation):
//   - available = onHand - allocated
//   - onHand >= 0, allocated >= 0, available >= 0
type Balance struct {
	itemID     string
	locationID string
	onHand     int
	allocated  int
	updatedAt  time.Time
}

// NewBalance creates an empty balance for an (item, location) pair.
func NewBalance(itemID, locationID string, now time.Time) *Balance {
	return &Balance{itemID: itemID, locationID: locationID, updatedAt: now}
}

// RestoreBalance reconstructs a balance from persisted quantities.
func RestoreBalance(itemID, locationID string, onHand, allocated int, updatedAt time.Time) *Balance {
	return &Balance{
		itemID:     itemID,
		locationID: locationID,
		onHand:     onHand,
		allocated:  allocated,
		updatedAt:  updatedAt,
	}
}

func (b *Balance) ItemID() string       { return b.itemID }
func (b *Balance) LocationID() string   { return b.locationID }
func (b *Balance) OnHand() int          { return b.onHand }
func (b *Balance) Allocated() int       { return b.allocated }
func (b *Balance) UpdatedAt() time.Time { return b.updatedAt }

// Available is always derived, never stored independently.
func (b *Balance) Available() int {
	return b.onHand - b.allocated
}

// Adjust applies a signed on-hand delta. The resulting on-hand quantity and
// the derived available quantity must both stay non-negative.
func (b *Balance) Adjust(delta int, now time.Time) error {
	newOnHand := b.onHand + delta
	if newOnHand < 0 {
		return shared.NewBusinessRuleError(
			"adjustment would drive on-hand negative: item %s location %s on_hand %d delta %d",
			b.itemID, b.locationID, b.onHand, delta)
	}
	if newOnHand-b.allocated < 0 {
		return shared.NewBusinessRuleError(
			"adjustment would drive available negative: item %s location %s allocated %d",
			b.itemID, b.locationID, b.allocated)
	}
	b.onHand = newOnHand
	b.updatedAt = now
	return nil
}

// Reserve claims qty units of available stock, growing the allocation.
func (b *Balance) Reserve(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("reserve quantity must be positive, got %d", qty)
	}
	if b.Available() < qty {
		return shared.NewBusinessRuleError(
			"insufficient inventory: item %s location %s available %d requested %d",
			b.itemID, b.locationID, b.Available(), qty)
	}
	b.allocated += qty
	b.updatedAt = now
	return nil
}

// Release returns qty units from the allocation back to available.
func (b *Balance) Release(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("release quantity must be positive, got %d", qty)
	}
	if b.allocated < qty {
		return shared.NewBusinessRuleError(
			"release exceeds allocation: item %s location %s allocated %d requested %d",
			b.itemID, b.locationID, b.allocated, qty)
	}
	b.allocated -= qty
	b.updatedAt = now
	return nil
}

// Allocate converts a reservation into consumption at fulfillment time:
// both on-hand and allocated shrink together.
func (b *Balance) Allocate(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("allocate quantity must be positive, got %d", qty)
	}
	if b.allocated < qty {
		return shared.NewBusinessRuleError(
			"allocation exceeds reserved stock: item %s location %s allocated %d requested %d",
			b.itemID, b.locationID, b.allocated, qty)
	}
	if b.onHand < qty {
		return shared.NewBusinessRuleError(
			"allocation exceeds on-hand stock: item %s location %s on_hand %d requested %d",
			b.itemID, b.locationID, b.onHand, qty)
	}
	b.onHand -= qty
	b.allocated -= qty
	b.updatedAt = now
	return nil
}

// Deallocate reverses an allocation: stock returns on-hand and re-enters the
// allocation so the backing reservation is live again.
func (b *Balance) Deallocate(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("deallocate quantity must be positive, got %d", qty)
	}
	b.onHand += qty
	b.allocated += qty
	b.updatedAt = now
	return nil
}

// TransferOut removes qty from on-hand for a transfer. Allocated stock never
// leaves the location, so the free portion (on_hand - allocated) must cover it.
func (b *Balance) TransferOut(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("transfer quantity must be positive, got %d", qty)
	}
	if b.onHand-b.allocated < qty {
		return shared.NewBusinessRuleError(
			"insufficient unallocated stock to transfer: item %s location %s free %d requested %d",
			b.itemID, b.locationID, b.onHand-b.allocated, qty)
	}
	b.onHand -= qty
	b.updatedAt = now
	return nil
}

// TransferIn adds qty to on-hand at the destination.
func (b *Balance) TransferIn(qty int, now time.Time) error {
	if qty <= 0 {
		return shared.NewBusinessRuleError("transfer quantity must be positive, got %d", qty)
	}
	b.onHand += qty
	b.updatedAt = now
	return nil
}

// SetCounted overwrites on-hand with a physical count result. The count may
// not undercut the current allocation.
func (b *Balance) SetCounted(counted int, now time.Time) error {
	if counted < 0 {
		return shared.NewBusinessRuleError("counted quantity must be non-negative, got %d", counted)
	}
	if counted < b.allocated {
		return shared.NewBusinessRuleError(
			"counted quantity %d is below allocated %d at item %s location %s",
			counted, b.allocated, b.itemID, b.locationID)
	}
	b.onHand = counted
	b.updatedAt = now
	return nil
}
