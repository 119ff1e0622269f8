package inventory

import (
	"time"

	"github.com/harborline/omscore/internal/domain/shared"
)

// ReservationState enumerates the reservation lifecycle.
type ReservationState string

const (
	ReservationActive   ReservationState = "active"
	ReservationReleased ReservationState = "released"
	ReservationExpired  ReservationState = "expired"
	ReservationConsumed ReservationState = "consumed"
)

// Strategy controls behavior when available stock cannot cover a request.
type Strategy string

const (
	// StrategyStrict rejects the reservation outright when stock is short.
	StrategyStrict Strategy = "strict"

	// StrategyPartial reserves what is available and reports the shortfall.
	StrategyPartial Strategy = "partial"
)

// DefaultReservationDays is the default lifetime of a reservation.
const DefaultReservationDays = 7

// Reservation is an allocated claim on inventory that has not yet left the
// warehouse. It converts to consumption via allocation, or back to available
// stock via release or expiry.
type Reservation struct {
	id            string
	itemID        string
	locationID    string
	quantity      int
	referenceID   string
	referenceType string
	state         ReservationState
	expiresAt     time.Time
	createdAt     time.Time
}

// NewReservation creates an active reservation.
func NewReservation(id, itemID, locationID string, qty int, referenceID, referenceType string, now time.Time, durationDays int) *Reservation {
	if durationDays <= 0 {
		durationDays = DefaultReservationDays
	}
	return &Reservation{
		id:            id,
		itemID:        itemID,
		locationID:    locationID,
		quantity:      qty,
		referenceID:   referenceID,
		referenceType: referenceType,
		state:         ReservationActive,
		expiresAt:     now.AddDate(0, 0, durationDays),
		createdAt:     now,
	}
}

// RestoreReservation reconstructs a reservation from persisted state.
func RestoreReservation(id, itemID, locationID string, qty int, referenceID, referenceType string, state ReservationState, expiresAt, createdAt time.Time) *Reservation {
	return &Reservation{
		id:            id,
		itemID:        itemID,
		locationID:    locationID,
		quantity:      qty,
		referenceID:   referenceID,
		referenceType: referenceType,
		state:         state,
		expiresAt:     expiresAt,
		createdAt:     createdAt,
	}
}

func (r *Reservation) ID() string              { return r.id }
func (r *Reservation) ItemID() string          { return r.itemID }
func (r *Reservation) LocationID() string      { return r.locationID }
func (r *Reservation) Quantity() int           { return r.quantity }
func (r *Reservation) ReferenceID() string     { return r.referenceID }
func (r *Reservation) ReferenceType() string   { return r.referenceType }
func (r *Reservation) State() ReservationState { return r.state }
func (r *Reservation) ExpiresAt() time.Time    { return r.expiresAt }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }

// IsActive reports whether the reservation still holds allocation.
func (r *Reservation) IsActive() bool {
	return r.state == ReservationActive
}

// IsExpired reports whether the reservation's lifetime has lapsed. Expiry is
// swept externally; the core only exposes the check and the release path.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.state == ReservationActive && now.After(r.expiresAt)
}

// Release marks the reservation released. Only active reservations release.
func (r *Reservation) Release() error {
	if r.state != ReservationActive {
		return shared.NewInvalidStatusError("reservation", string(r.state), string(ReservationReleased))
	}
	r.state = ReservationReleased
	return nil
}

// Consume marks the reservation consumed by an allocation.
func (r *Reservation) Consume() error {
	if r.state != ReservationActive {
		return shared.NewInvalidStatusError("reservation", string(r.state), string(ReservationConsumed))
	}
	r.state = ReservationConsumed
	return nil
}

// Reactivate returns a consumed reservation to active after a deallocation.
func (r *Reservation) Reactivate() error {
	if r.state != ReservationConsumed {
		return shared.NewInvalidStatusError("reservation", string(r.state), string(ReservationActive))
	}
	r.state = ReservationActive
	return nil
}

// Expire marks an active reservation expired.
func (r *Reservation) Expire() error {
	if r.state != ReservationActive {
		return shared.NewInvalidStatusError("reservation", string(r.state), string(ReservationExpired))
	}
	r.state = ReservationExpired
	return nil
}
