// Package outbox defines the durable event queue co-located with aggregate
// writes. Enqueue happens inside the caller's transaction, which makes
// "persist + emit" atomic; a background worker drains the table with
// at-least-once delivery.
package outbox

import "time"

// Status is the delivery state of an outbox row.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
)

// Record is one queued event. The row is owned by the worker between claim
// and terminal transition.
type Record struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Status        Status
	Attempts      int
	AvailableAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProcessedAt   *time.Time
	ErrorMessage  string
}

// Retry policy defaults.
const (
	DefaultMaxAttempts = 8
	DefaultBackoffBase = 2 * time.Second
	DefaultJitter      = time.Second
)

// Backoff computes the delay before the next retry after the given attempt
// count: base^attempts seconds, capped to keep poison rows from scheduling
// into the distant future while they burn down their attempt budget.
func Backoff(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := base
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay > 10*time.Minute {
			return 10 * time.Minute
		}
	}
	return delay
}
