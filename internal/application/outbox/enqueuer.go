// Package outbox holds the enqueue side and the background worker that
// drains the durable event queue.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/outbox"
)

// Enqueuer serializes domain events into outbox rows inside the caller's
// transaction.
type Enqueuer struct {
	repo outbox.Repository
}

// NewEnqueuer creates an enqueuer over the outbox repository.
func NewEnqueuer(repo outbox.Repository) *Enqueuer {
	return &Enqueuer{repo: repo}
}

// Enqueue marshals the event and inserts a pending outbox row. The ambient
// transaction in ctx makes the insert atomic with the aggregate write.
func (e *Enqueuer) Enqueue(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.EventType(), err)
	}
	return e.repo.Enqueue(ctx, event.AggregateType(), event.AggregateID(), event.EventType(), payload)
}
