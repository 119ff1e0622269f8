// Package events hosts the in-process event bus: a bounded queue drained by
// a single dispatcher, giving per-sender FIFO ordering and at-most-once
// in-process delivery. Durable delivery goes through the outbox instead.
package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
)

// DefaultBufferSize is the bounded channel capacity.
const DefaultBufferSize = 32

// Bus is the process-wide event channel. Publish blocks when the buffer is
// full: producers either batch or offload to the outbox. One dispatcher
// goroutine invokes handlers sequentially per event, so a handler observes
// events in publish order from any single producer.
type Bus struct {
	ch     chan events.Event
	logger zerolog.Logger

	mu       sync.RWMutex
	handlers []events.Handler
	closed   bool

	done chan struct{}
}

// NewBus creates a bus with the given buffer capacity (<=0 uses the default).
func NewBus(bufferSize int, logger zerolog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		ch:     make(chan events.Event, bufferSize),
		logger: logger.With().Str("component", "event_bus").Logger(),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a handler for all events. Registration happens at
// startup, before Start; handlers run sequentially in registration order.
func (b *Bus) Subscribe(handler events.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// SubscribeFunc registers a function handler.
func (b *Bus) SubscribeFunc(fn func(event events.Event) error) {
	b.Subscribe(events.HandlerFunc(fn))
}

// Publish enqueues an event, blocking while the buffer is full. Publishing
// to a closed bus returns EventError.
func (b *Bus) Publish(event events.Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return shared.NewEventError(event.EventType(), errBusClosed)
	}

	select {
	case b.ch <- event:
		return nil
	case <-b.done:
		return shared.NewEventError(event.EventType(), errBusClosed)
	}
}

// Start launches the dispatcher. It drains until the context is cancelled,
// then finishes whatever is already buffered before returning.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case <-ctx.Done():
				b.drainRemaining()
				return
			case event := <-b.ch:
				b.dispatch(event)
			}
		}
	}()
}

// Close marks the bus closed for publishers. Safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Done reports dispatcher shutdown completion.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

func (b *Bus) drainRemaining() {
	for {
		select {
		case event := <-b.ch:
			b.dispatch(event)
		default:
			return
		}
	}
}

// dispatch invokes every handler for the event. A handler error is logged
// and does not stop the remaining handlers.
func (b *Bus) dispatch(event events.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event_type", event.EventType()).
				Str("aggregate_type", event.AggregateType()).
				Str("aggregate_id", event.AggregateID()).
				Msg("event handler failed")
		}
	}
}

var errBusClosed = busClosedError{}

type busClosedError struct{}

func (busClosedError) Error() string { return "event bus is closed" }
