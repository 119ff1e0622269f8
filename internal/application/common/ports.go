package common

import (
	"context"

	"github.com/harborline/omscore/internal/domain/events"
)

// TransactionManager runs a function inside a database transaction. All
// repository calls made with the callback's context join that transaction;
// an error return rolls everything back. Commands never hold a transaction
// across task handoffs.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher is the in-process bus surface handlers publish to after a
// successful commit. A send failure does not fail the command; the outbox
// row is already durable.
type EventPublisher interface {
	Publish(event events.Event) error
}

// OutboxEnqueuer records a domain event in the outbox inside the caller's
// transaction.
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, event events.Event) error
}

// CommandName identifies a request for metrics and logs. Requests that do not
// implement it fall back to a reflective name.
type CommandName interface {
	CommandName() string
}
