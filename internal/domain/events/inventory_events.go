package events

import "time"

// Inventory event type names.
const (
	TypeInventoryAdjusted            = "InventoryAdjusted"
	TypeInventoryReserved            = "InventoryReserved"
	TypePartialReservationWarning    = "PartialReservationWarning"
	TypeInventoryReleased            = "InventoryReleased"
	TypeInventoryAllocated           = "InventoryAllocated"
	TypeInventoryDeallocated         = "InventoryDeallocated"
	TypeInventoryReceived            = "InventoryReceived"
	TypeInventoryTransferred         = "InventoryTransferred"
	TypeInventoryCycleCountCompleted = "InventoryCycleCountCompleted"
	TypeInventoryLevelSet            = "InventoryLevelSet"
	TypeSafetyStockAlert             = "SafetyStockAlert"
)

type InventoryEvent struct {
	ItemID string `json:"item_id"`
}

func (e InventoryEvent) AggregateType() string { return AggregateInventory }
func (e InventoryEvent) AggregateID() string   { return e.ItemID }

type InventoryAdjusted struct {
	InventoryEvent
	LocationID    string `json:"location_id"`
	Delta         int    `json:"delta"`
	OldQuantity   int    `json:"old_quantity"`
	NewQuantity   int    `json:"new_quantity"`
	Reason        string `json:"reason"`
	TransactionID string `json:"txn_id"`
}

func (InventoryAdjusted) EventType() string { return TypeInventoryAdjusted }

func NewInventoryAdjusted(itemID, locationID string, delta, oldQty, newQty int, reason, txnID string) InventoryAdjusted {
	return InventoryAdjusted{
		InventoryEvent: InventoryEvent{ItemID: itemID},
		LocationID:     locationID,
		Delta:          delta,
		OldQuantity:    oldQty,
		NewQuantity:    newQty,
		Reason:         reason,
		TransactionID:  txnID,
	}
}

// ReservationLine reports requested vs actually reserved per line.
type ReservationLine struct {
	ItemID    string `json:"item_id"`
	Requested int    `json:"requested"`
	Reserved  int    `json:"reserved"`
}

type InventoryReserved struct {
	InventoryEvent
	ReservationID string            `json:"reservation_id"`
	ReferenceID   string            `json:"reference_id"`
	ReferenceType string            `json:"reference_type"`
	LocationID    string            `json:"location_id"`
	Lines         []ReservationLine `json:"lines"`
	Fully         bool              `json:"fully"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

func (InventoryReserved) EventType() string { return TypeInventoryReserved }

type PartialReservationWarning struct {
	InventoryEvent
	ReservationID string            `json:"reservation_id"`
	ReferenceID   string            `json:"reference_id"`
	LocationID    string            `json:"location_id"`
	Lines         []ReservationLine `json:"lines"`
	Shortfall     int               `json:"shortfall"`
}

func (PartialReservationWarning) EventType() string { return TypePartialReservationWarning }

type InventoryReleased struct {
	InventoryEvent
	ReservationID string `json:"reservation_id"`
	LocationID    string `json:"location_id"`
	Quantity      int    `json:"quantity"`
}

func (InventoryReleased) EventType() string { return TypeInventoryReleased }

type InventoryAllocated struct {
	InventoryEvent
	ReservationID string `json:"reservation_id"`
	LocationID    string `json:"location_id"`
	Quantity      int    `json:"quantity"`
}

func (InventoryAllocated) EventType() string { return TypeInventoryAllocated }

type InventoryDeallocated struct {
	InventoryEvent
	ReservationID string `json:"reservation_id"`
	LocationID    string `json:"location_id"`
	Quantity      int    `json:"quantity"`
}

func (InventoryDeallocated) EventType() string { return TypeInventoryDeallocated }

type InventoryReceived struct {
	InventoryEvent
	LocationID    string `json:"location_id"`
	Quantity      int    `json:"quantity"`
	ReferenceID   string `json:"reference_id,omitempty"`
	TransactionID string `json:"txn_id"`
}

func (InventoryReceived) EventType() string { return TypeInventoryReceived }

type InventoryTransferred struct {
	InventoryEvent
	FromLocationID string `json:"from_location_id"`
	ToLocationID   string `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
	TransactionID  string `json:"txn_id"`
}

func (InventoryTransferred) EventType() string { return TypeInventoryTransferred }

type InventoryCycleCountCompleted struct {
	InventoryEvent
	LocationID    string `json:"location_id"`
	CountedQty    int    `json:"counted_qty"`
	PreviousQty   int    `json:"previous_qty"`
	Variance      int    `json:"variance"`
	TransactionID string `json:"txn_id"`
}

func (InventoryCycleCountCompleted) EventType() string { return TypeInventoryCycleCountCompleted }

type InventoryLevelSet struct {
	InventoryEvent
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

func (InventoryLevelSet) EventType() string { return TypeInventoryLevelSet }

type SafetyStockAlert struct {
	InventoryEvent
	LocationID string `json:"location_id"`
	Available  int    `json:"available"`
	Threshold  int    `json:"threshold"`
}

func (SafetyStockAlert) EventType() string { return TypeSafetyStockAlert }
