package events

import "time"

// ASN event type names.
const (
	TypeASNCreated          = "ASNCreated"
	TypeASNUpdated          = "ASNUpdated"
	TypeASNCancelled        = "ASNCancelled"
	TypeASNSubmitted        = "ASNSubmitted"
	TypeASNInTransit        = "ASNInTransit"
	TypeASNDelivered        = "ASNDelivered"
	TypeASNItemAdded        = "ASNItemAdded"
	TypeASNItemRemoved      = "ASNItemRemoved"
	TypeASNOnHold           = "ASNOnHold"
	TypeASNReleasedFromHold = "ASNReleasedFromHold"
	TypeASNSupplierNotified = "ASNSupplierNotified"
)

type ASNEvent struct {
	ASNID string `json:"asn_id"`
}

func (e ASNEvent) AggregateType() string { return AggregateASN }
func (e ASNEvent) AggregateID() string   { return e.ASNID }

type ASNCreated struct {
	ASNEvent
	PurchaseOrderID  string    `json:"purchase_order_id"`
	SupplierID       string    `json:"supplier_id"`
	ExpectedDelivery time.Time `json:"expected_delivery"`
}

func (ASNCreated) EventType() string { return TypeASNCreated }

type ASNUpdated struct {
	ASNEvent
	Version int `json:"version"`
}

func (ASNUpdated) EventType() string { return TypeASNUpdated }

// ASNTransitioned covers submitted/in-transit/delivered/on-hold/release/cancel.
type ASNTransitioned struct {
	ASNEvent
	Type       string `json:"-"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
	Version    int    `json:"version"`
}

func (e ASNTransitioned) EventType() string { return e.Type }

func NewASNTransitioned(eventType, asnID, from, to, reason string, version int) ASNTransitioned {
	return ASNTransitioned{
		ASNEvent:   ASNEvent{ASNID: asnID},
		Type:       eventType,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
		Version:    version,
	}
}

type ASNItemAdded struct {
	ASNEvent
	ItemID   string `json:"item_id"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

func (ASNItemAdded) EventType() string { return TypeASNItemAdded }

type ASNItemRemoved struct {
	ASNEvent
	ItemID string `json:"item_id"`
}

func (ASNItemRemoved) EventType() string { return TypeASNItemRemoved }

// ASNSupplierNotified is the second event emitted by a cancellation when the
// command requests supplier notification.
type ASNSupplierNotified struct {
	ASNEvent
	SupplierID string `json:"supplier_id"`
	Reason     string `json:"reason"`
}

func (ASNSupplierNotified) EventType() string { return TypeASNSupplierNotified }
