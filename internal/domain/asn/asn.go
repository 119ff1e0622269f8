// Package asn models the Advanced Shipping Notice aggregate: the supplier's
// declaration of an inbound shipment, its items and packages, and the notes
// written on every lifecycle transition.
package asn

import (
	"time"

	"github.com/harborline/omscore/internal/domain/shared"
)

// Status is the ASN lifecycle state set.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusOnHold    Status = "on_hold"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var allowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted, StatusCancelled},
	StatusSubmitted: {StatusInTransit, StatusOnHold, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusOnHold},
	StatusOnHold:    {StatusSubmitted, StatusInTransit, StatusCancelled},
}

// CanTransition reports whether from -> to is in the matrix.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// NoteType classifies ASN notes; lifecycle transitions write the matching type.
type NoteType string

const (
	NoteCancellation NoteType = "CANCELLATION"
	NoteHold         NoteType = "HOLD"
	NoteRelease      NoteType = "RELEASE"
	NoteGeneral      NoteType = "GENERAL"
)

// Note is a child row of an ASN.
type Note struct {
	ID        string
	ASNID     string
	Type      NoteType
	Text      string
	CreatedBy string
	CreatedAt time.Time
}

// Item is one expected line of the inbound shipment.
type Item struct {
	ID       string
	ASNID    string
	SKU      string
	ItemID   string
	Quantity int
}

// Package describes one physical parcel in the shipment.
type Package struct {
	ID             string
	ASNID          string
	TrackingNumber string
	WeightKG       float64
	Items          int
}

// ASN is an optimistically locked aggregate, same discipline as work orders.
type ASN struct {
	id               string
	purchaseOrderID  string
	supplierID       string
	status           Status
	expectedDelivery time.Time
	shippingAddress  string
	carrier          string
	carrierReference string
	items            []Item
	packages         []Package
	version          int
	createdAt        time.Time
	updatedAt        time.Time
}

// New creates a draft ASN at version 1.
func New(id, purchaseOrderID, supplierID string, expectedDelivery time.Time, shippingAddress, carrier string, now time.Time) (*ASN, error) {
	if purchaseOrderID == "" {
		return nil, shared.NewValidationError("purchase_order_id", "purchase order id is required")
	}
	if supplierID == "" {
		return nil, shared.NewValidationError("supplier_id", "supplier id is required")
	}
	return &ASN{
		id:               id,
		purchaseOrderID:  purchaseOrderID,
		supplierID:       supplierID,
		status:           StatusDraft,
		expectedDelivery: expectedDelivery,
		shippingAddress:  shippingAddress,
		carrier:          carrier,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Restore reconstructs an ASN from persistence.
func Restore(id, purchaseOrderID, supplierID string, status Status, expectedDelivery time.Time,
	shippingAddress, carrier, carrierReference string, items []Item, packages []Package,
	version int, createdAt, updatedAt time.Time) *ASN {
	return &ASN{
		id:               id,
		purchaseOrderID:  purchaseOrderID,
		supplierID:       supplierID,
		status:           status,
		expectedDelivery: expectedDelivery,
		shippingAddress:  shippingAddress,
		carrier:          carrier,
		carrierReference: carrierReference,
		items:            items,
		packages:         packages,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (a *ASN) ID() string                  { return a.id }
func (a *ASN) PurchaseOrderID() string     { return a.purchaseOrderID }
func (a *ASN) SupplierID() string          { return a.supplierID }
func (a *ASN) Status() Status              { return a.status }
func (a *ASN) ExpectedDelivery() time.Time { return a.expectedDelivery }
func (a *ASN) ShippingAddress() string     { return a.shippingAddress }
func (a *ASN) Carrier() string             { return a.carrier }
func (a *ASN) CarrierReference() string    { return a.carrierReference }
func (a *ASN) Items() []Item               { return a.items }
func (a *ASN) Packages() []Package         { return a.packages }
func (a *ASN) Version() int                { return a.version }
func (a *ASN) CreatedAt() time.Time        { return a.createdAt }
func (a *ASN) UpdatedAt() time.Time        { return a.updatedAt }

// CheckVersion compares the caller's expected version against current state.
func (a *ASN) CheckVersion(expected int) error {
	if expected != a.version {
		return shared.NewConcurrentModificationError("asn", a.id, expected)
	}
	return nil
}

// BumpVersion mirrors the stored version after a successful conditional write.
func (a *ASN) BumpVersion() {
	a.version++
}

// TransitionTo moves the ASN through the matrix.
func (a *ASN) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(a.status, to) {
		return shared.NewInvalidStatusError("asn", string(a.status), string(to))
	}
	a.status = to
	a.updatedAt = now
	return nil
}

// Cancel rejects cancellation from in_transit and delivered; terminal states
// fail the matrix check.
func (a *ASN) Cancel(now time.Time) error {
	if a.status == StatusInTransit || a.status == StatusDelivered {
		return shared.NewInvalidStatusError("asn", string(a.status), string(StatusCancelled))
	}
	return a.TransitionTo(StatusCancelled, now)
}

// Hold puts the ASN on hold; holdable only from submitted or in_transit.
func (a *ASN) Hold(now time.Time) error {
	return a.TransitionTo(StatusOnHold, now)
}

// Release resumes a held ASN into the given status (submitted or in_transit).
func (a *ASN) Release(to Status, now time.Time) error {
	if a.status != StatusOnHold {
		return shared.NewInvalidStatusError("asn", string(a.status), string(to))
	}
	if to != StatusSubmitted && to != StatusInTransit {
		return shared.NewInvalidStatusError("asn", string(a.status), string(to))
	}
	return a.TransitionTo(to, now)
}

// SetCarrierReference records the carrier's tracking reference.
func (a *ASN) SetCarrierReference(ref string, now time.Time) {
	a.carrierReference = ref
	a.updatedAt = now
}

// childMutable reports whether items and packages may change. Children are
// managed only before the shipment moves.
func (a *ASN) childMutable() bool {
	return a.status == StatusDraft || a.status == StatusSubmitted
}

// AddItem appends an expected line. Legal only in draft or submitted.
func (a *ASN) AddItem(item Item, now time.Time) error {
	if !a.childMutable() {
		return shared.NewInvalidStatusError("asn", string(a.status), "item_added")
	}
	if item.Quantity <= 0 {
		return shared.NewValidationError("quantity", "item quantity must be positive")
	}
	a.items = append(a.items, item)
	a.updatedAt = now
	return nil
}

// RemoveItem deletes an expected line by id.
func (a *ASN) RemoveItem(itemID string, now time.Time) (Item, error) {
	if !a.childMutable() {
		return Item{}, shared.NewInvalidStatusError("asn", string(a.status), "item_removed")
	}
	for i, item := range a.items {
		if item.ID == itemID {
			a.items = append(a.items[:i], a.items[i+1:]...)
			a.updatedAt = now
			return item, nil
		}
	}
	return Item{}, shared.NewNotFoundError("asn item", itemID)
}

// AddPackage appends a parcel. Legal only in draft or submitted.
func (a *ASN) AddPackage(pkg Package, now time.Time) error {
	if !a.childMutable() {
		return shared.NewInvalidStatusError("asn", string(a.status), "package_added")
	}
	a.packages = append(a.packages, pkg)
	a.updatedAt = now
	return nil
}

// NoteTypeForTransition maps a lifecycle transition to the note type written
// alongside it. Resuming out of on_hold is a RELEASE; everything that is not
// a cancellation or a hold is GENERAL.
func NoteTypeForTransition(from, to Status) NoteType {
	switch {
	case to == StatusCancelled:
		return NoteCancellation
	case to == StatusOnHold:
		return NoteHold
	case from == StatusOnHold:
		return NoteRelease
	default:
		return NoteGeneral
	}
}
