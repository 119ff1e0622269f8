package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentOutcome is the closed set of gateway outcomes the core records.
// Gateway integration semantics live outside the core; only the result rows
// and their events belong here.
type PaymentOutcome string

const (
	PaymentAuthorized PaymentOutcome = "authorized"
	PaymentCaptured   PaymentOutcome = "captured"
	PaymentRefunded   PaymentOutcome = "refunded"
	PaymentFailed     PaymentOutcome = "failed"
	PaymentVoided     PaymentOutcome = "voided"
)

// ValidPaymentOutcome reports membership in the closed set.
func ValidPaymentOutcome(raw string) bool {
	switch PaymentOutcome(raw) {
	case PaymentAuthorized, PaymentCaptured, PaymentRefunded, PaymentFailed, PaymentVoided:
		return true
	}
	return false
}

// Payment records one gateway outcome against an order.
type Payment struct {
	ID         string
	OrderID    string
	Outcome    PaymentOutcome
	Amount     decimal.Decimal
	Currency   string
	Gateway    string
	Reference  string
	RecordedAt time.Time
}
