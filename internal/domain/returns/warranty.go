package returns

import (
	"time"

	"github.com/harborline/omscore/internal/domain/shared"
)

// WarrantyStatus is derived lazily: active warranties past their end date
// read as expired without a write. Void is an explicit admin action.
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyVoid    WarrantyStatus = "void"
)

// ClaimStatus is the warranty-claim decision set.
type ClaimStatus string

const (
	ClaimSubmitted ClaimStatus = "submitted"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
)

// Claim is a child row of a warranty.
type Claim struct {
	ID          string
	WarrantyID  string
	Description string
	Status      ClaimStatus
	Resolution  string
	SubmittedAt time.Time
	ResolvedAt  *time.Time
}

// Warranty covers a product for a customer between start and end dates.
type Warranty struct {
	id         string
	productID  string
	customerID string
	startDate  time.Time
	endDate    time.Time
	status     WarrantyStatus
	terms      string
	createdAt  time.Time
}

// NewWarranty creates an active warranty.
func NewWarranty(id, productID, customerID string, startDate, endDate time.Time, terms string, now time.Time) (*Warranty, error) {
	if productID == "" {
		return nil, shared.NewValidationError("product_id", "product id is required")
	}
	if customerID == "" {
		return nil, shared.NewValidationError("customer_id", "customer id is required")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewValidationError("end_date", "end date must be after start date")
	}
	return &Warranty{
		id:         id,
		productID:  productID,
		customerID: customerID,
		startDate:  startDate,
		endDate:    endDate,
		status:     WarrantyActive,
		terms:      terms,
		createdAt:  now,
	}, nil
}

// RestoreWarranty reconstructs a warranty from persistence.
func RestoreWarranty(id, productID, customerID string, startDate, endDate time.Time, status WarrantyStatus, terms string, createdAt time.Time) *Warranty {
	return &Warranty{
		id:         id,
		productID:  productID,
		customerID: customerID,
		startDate:  startDate,
		endDate:    endDate,
		status:     status,
		terms:      terms,
		createdAt:  createdAt,
	}
}

func (w *Warranty) ID() string           { return w.id }
func (w *Warranty) ProductID() string    { return w.productID }
func (w *Warranty) CustomerID() string   { return w.customerID }
func (w *Warranty) StartDate() time.Time { return w.startDate }
func (w *Warranty) EndDate() time.Time   { return w.endDate }
func (w *Warranty) Terms() string        { return w.terms }
func (w *Warranty) CreatedAt() time.Time { return w.createdAt }

// StatusAt derives the effective status at the given instant. Void always
// wins; otherwise an active warranty past end date reads expired.
func (w *Warranty) StatusAt(now time.Time) WarrantyStatus {
	if w.status == WarrantyVoid {
		return WarrantyVoid
	}
	if now.After(w.endDate) {
		return WarrantyExpired
	}
	return w.status
}

// StoredStatus exposes the persisted status for repositories.
func (w *Warranty) StoredStatus() WarrantyStatus { return w.status }

// Void marks the warranty void. Admin-set; allowed from any state.
func (w *Warranty) Void() {
	w.status = WarrantyVoid
}

// AcceptClaim validates that a claim may be opened by the given customer at
// the given time: the warranty must read active and the customer must match.
func (w *Warranty) AcceptClaim(customerID string, now time.Time) error {
	if w.customerID != customerID {
		return shared.NewBusinessRuleError("warranty %s does not belong to customer %s", w.id, customerID)
	}
	if status := w.StatusAt(now); status != WarrantyActive {
		return shared.NewBusinessRuleError("warranty %s is %s, claims require an active warranty", w.id, status)
	}
	return nil
}

// DecideClaim resolves a submitted claim to approved or rejected.
func DecideClaim(claim *Claim, decision ClaimStatus, resolution string, now time.Time) error {
	if claim.Status != ClaimSubmitted {
		return shared.NewInvalidStatusError("warranty claim", string(claim.Status), string(decision))
	}
	if decision != ClaimApproved && decision != ClaimRejected {
		return shared.NewValidationError("decision", "claim decision must be approved or rejected")
	}
	claim.Status = decision
	claim.Resolution = resolution
	t := now
	claim.ResolvedAt = &t
	return nil
}
