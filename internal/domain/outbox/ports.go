package outbox

import (
	"context"
	"time"
)

// Repository is the outbox table port.
type Repository interface {
	// Enqueue inserts a pending row inside the ambient transaction (the
	// implementation picks the transaction out of ctx), making the event
	// atomic with the aggregate write.
	Enqueue(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error

	// Claim atomically marks up to limit ready rows processing (attempts
	// incremented) and returns them, oldest first. Concurrent workers never
	// claim the same row.
	Claim(ctx context.Context, limit int, now time.Time) ([]*Record, error)

	// MarkDelivered transitions a claimed row to delivered.
	MarkDelivered(ctx context.Context, id string, now time.Time) error

	// ScheduleRetry returns a claimed row to pending with a new available_at.
	ScheduleRetry(ctx context.Context, id string, availableAt time.Time, errMessage string, now time.Time) error

	// MarkFailed dead-letters a claimed row.
	MarkFailed(ctx context.Context, id string, errMessage string, now time.Time) error

	// ReleaseProcessing returns any rows stuck in processing to pending.
	// Called on worker shutdown and startup so no row stays claimed forever.
	ReleaseProcessing(ctx context.Context, now time.Time) (int64, error)

	// FindByID reads a single row (operator inspection, tests).
	FindByID(ctx context.Context, id string) (*Record, error)

	// CountByStatus reports queue depth per status for metrics.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
