package inventory

import "time"

// TransactionType classifies inventory audit rows.
type TransactionType string

const (
	TxnAdjustment TransactionType = "ADJUSTMENT"
	TxnReceipt    TransactionType = "RECEIPT"
	TxnTransfer   TransactionType = "TRANSFER"
	TxnCycleCount TransactionType = "CYCLE_COUNT"
	TxnAllocation TransactionType = "ALLOCATION"
)

// Well-known adjustment reasons.
const (
	ReasonReturnRestock = "RETURN_RESTOCK"
)

// Transaction is the immutable audit record written alongside every stock
// movement, in the same database transaction as the balance update.
type Transaction struct {
	ID         string
	Type       TransactionType
	ItemID     string
	LocationID string
	Delta      int
	BeforeQty  int
	AfterQty   int
	Reason     string
	OccurredAt time.Time
}
