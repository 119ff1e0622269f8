// Package returns models the return and warranty aggregates: the return
// lifecycle from request through refund and restock, and warranties with
// their claims.
package returns

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/domain/shared"
)

// Status is the return lifecycle state set.
type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusReceived  Status = "received"
	StatusRefunded  Status = "refunded"
	StatusCompleted Status = "completed"
)

// Cancellation is legal from any pre-received state; approve and reject are
// mutually exclusive terminal decisions on requested.
var allowedTransitions = map[Status][]Status{
	StatusRequested: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusReceived, StatusCancelled},
	StatusReceived:  {StatusRefunded},
	StatusRefunded:  {StatusCompleted},
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

// ItemCondition describes the state of a returned unit on receipt.
type ItemCondition string

const (
	ConditionNew       ItemCondition = "new"
	ConditionOpened    ItemCondition = "opened"
	ConditionDamaged   ItemCondition = "damaged"
	ConditionDefective ItemCondition = "defective"
)

// Item is one returned line with its restock decision.
type Item struct {
	ID              string
	ReturnID        string
	OrderItemID     string
	ItemID          string
	LocationID      string
	Quantity        int
	Condition       ItemCondition
	RestockEligible bool
	Restocked       bool
}

// Return is the aggregate root for a customer return.
type Return struct {
	id           string
	orderID      string
	reason       string
	status       Status
	items        []Item
	refundAmount decimal.Decimal
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a requested return.
func New(id, orderID, reason string, items []Item, now time.Time) (*Return, error) {
	if orderID == "" {
		return nil, shared.NewValidationError("order_id", "order id is required")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("items", "return requires at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, shared.NewValidationError("items", "return item quantity must be positive")
		}
	}
	return &Return{
		id:           id,
		orderID:      orderID,
		reason:       reason,
		status:       StatusRequested,
		items:        items,
		refundAmount: decimal.Zero,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Restore reconstructs a return from persistence.
func Restore(id, orderID, reason string, status Status, items []Item, refundAmount decimal.Decimal, createdAt, updatedAt time.Time) *Return {
	return &Return{
		id:           id,
		orderID:      orderID,
		reason:       reason,
		status:       status,
		items:        items,
		refundAmount: refundAmount,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Return) ID() string                     { return r.id }
func (r *Return) OrderID() string                { return r.orderID }
func (r *Return) Reason() string                 { return r.reason }
func (r *Return) Status() Status                 { return r.status }
func (r *Return) Items() []Item                  { return r.items }
func (r *Return) RefundAmount() decimal.Decimal  { return r.refundAmount }
func (r *Return) CreatedAt() time.Time           { return r.createdAt }
func (r *Return) UpdatedAt() time.Time           { return r.updatedAt }

// TransitionTo moves the return through the matrix.
func (r *Return) TransitionTo(to Status, now time.Time) error {
	if !CanTransition(r.status, to) {
		return shared.NewInvalidStatusError("return", string(r.status), string(to))
	}
	r.status = to
	r.updatedAt = now
	return nil
}

// Receive records per-item conditions and moves to received. Only approved
// returns can be received.
func (r *Return) Receive(conditions map[string]ItemCondition, now time.Time) error {
	if err := r.TransitionTo(StatusReceived, now); err != nil {
		return err
	}
	for i := range r.items {
		if cond, ok := conditions[r.items[i].ID]; ok {
			r.items[i].Condition = cond
			// Damaged or defective units never restock regardless of the
			// original eligibility flag.
			if cond == ConditionDamaged || cond == ConditionDefective {
				r.items[i].RestockEligible = false
			}
		}
	}
	return nil
}

// Refund requires received and records the refunded amount.
func (r *Return) Refund(amount decimal.Decimal, now time.Time) error {
	if amount.IsNegative() {
		return shared.NewValidationError("amount", "refund amount must not be negative")
	}
	if err := r.TransitionTo(StatusRefunded, now); err != nil {
		return err
	}
	r.refundAmount = amount
	return nil
}

// RestockableItems lists items flagged eligible and not yet restocked.
// Restock runs post-completion.
func (r *Return) RestockableItems() []Item {
	var eligible []Item
	for _, item := range r.items {
		if item.RestockEligible && !item.Restocked {
			eligible = append(eligible, item)
		}
	}
	return eligible
}

// MarkRestocked flags an item as returned to stock.
func (r *Return) MarkRestocked(itemID string, now time.Time) error {
	if r.status != StatusCompleted {
		return shared.NewInvalidStatusError("return", string(r.status), "restocked")
	}
	for i := range r.items {
		if r.items[i].ID == itemID {
			if !r.items[i].RestockEligible {
				return shared.NewBusinessRuleError("return item %s is not restock eligible", itemID)
			}
			r.items[i].Restocked = true
			r.updatedAt = now
			return nil
		}
	}
	return shared.NewNotFoundError("return item", itemID)
}
