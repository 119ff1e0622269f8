package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRepository persists per-(item, location) balances. Implementations
// back FindForUpdate with a row lock (or the engine's closest equivalent) so
// concurrent writers on the same pair serialize.
type BalanceRepository interface {
	// FindForUpdate loads the balance under a row lock. Returns NotFoundError
	// when no row exists for the pair.
	FindForUpdate(ctx context.Context, itemID, locationID string) (*Balance, error)

	// FindOrCreateForUpdate loads the balance under a row lock, creating a
	// zero row when absent.
	FindOrCreateForUpdate(ctx context.Context, itemID, locationID string, now time.Time) (*Balance, error)

	// Find loads without locking (snapshot reads).
	Find(ctx context.Context, itemID, locationID string) (*Balance, error)

	// FindByItem returns all location balances for an item.
	FindByItem(ctx context.Context, itemID string) ([]*Balance, error)

	// FindBelowAvailable lists balances whose available quantity is below the
	// threshold (the low-stock derivation).
	FindBelowAvailable(ctx context.Context, threshold int) ([]*Balance, error)

	Save(ctx context.Context, balance *Balance) error
}

// ReservationRepository persists reservation rows.
type ReservationRepository interface {
	Add(ctx context.Context, reservation *Reservation) error
	FindByID(ctx context.Context, id string) (*Reservation, error)

	// FindActive locates an active reservation for the pair, optionally
	// narrowed by reference id. Returns NotFoundError when none match.
	FindActive(ctx context.Context, itemID, locationID, referenceID string) (*Reservation, error)

	// SumActive returns the total active reserved quantity at a location for
	// the item. Used by invariant checks: sum <= balance.allocated.
	SumActive(ctx context.Context, itemID, locationID string) (int, error)

	Save(ctx context.Context, reservation *Reservation) error
}

// TransactionLogRepository appends audit rows for stock movements.
type TransactionLogRepository interface {
	Add(ctx context.Context, txn *Transaction) error
	FindByItemSince(ctx context.Context, itemID string, since, until time.Time) ([]*Transaction, error)
}

// PricedReceipt is an inbound movement with its unit cost, kept for
// weighted-average costing.
type PricedReceipt struct {
	ID         string
	ItemID     string
	LocationID string
	Quantity   int
	UnitCost   decimal.Decimal
	ReceivedAt time.Time
}

// ReceiptRepository records priced receipts.
type ReceiptRepository interface {
	AddPricedReceipt(ctx context.Context, receipt *PricedReceipt) error
}
