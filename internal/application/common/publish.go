package common

import (
	"context"

	"github.com/harborline/omscore/internal/domain/events"
)

// PublishAfterCommit pushes events onto the in-process bus once the
// transaction has committed. Send failures are logged and swallowed: the
// outbox already holds the durable copy, so the command still succeeds.
func PublishAfterCommit(ctx context.Context, publisher EventPublisher, evs ...events.Event) {
	logger := LoggerFromContext(ctx)
	for _, ev := range evs {
		if err := publisher.Publish(ev); err != nil {
			logger.Warn().
				Err(err).
				Str("event_type", ev.EventType()).
				Str("aggregate_id", ev.AggregateID()).
				Msg("in-process publish failed, outbox delivery still pending")
		}
	}
}
