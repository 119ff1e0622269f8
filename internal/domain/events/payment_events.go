package events

import "github.com/shopspring/decimal"

// Payment event type names. The core only records gateway outcomes; these
// events carry the recorded amounts, not gateway semantics.
const (
	TypePaymentAuthorized = "PaymentAuthorized"
	TypePaymentCaptured   = "PaymentCaptured"
	TypePaymentRefunded   = "PaymentRefunded"
	TypePaymentFailed     = "PaymentFailed"
	TypePaymentVoided     = "PaymentVoided"
)

// PaymentRecorded covers all payment outcome variants.
type PaymentRecorded struct {
	Type      string          `json:"-"`
	PaymentID string          `json:"payment_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Gateway   string          `json:"gateway,omitempty"`
}

func (e PaymentRecorded) EventType() string     { return e.Type }
func (e PaymentRecorded) AggregateType() string { return AggregatePayment }
func (e PaymentRecorded) AggregateID() string   { return e.PaymentID }
