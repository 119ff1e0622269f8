package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appevents "github.com/harborline/omscore/internal/application/events"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/shared"
)

func TestBus_DeliversToAllHandlersInOrder(t *testing.T) {
	bus := appevents.NewBus(8, zerolog.Nop())

	received := make(chan string, 4)
	bus.SubscribeFunc(func(event events.Event) error {
		received <- "first:" + event.EventType()
		return nil
	})
	bus.SubscribeFunc(func(event events.Event) error {
		received <- "second:" + event.EventType()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)

	require.NoError(t, bus.Publish(events.InventoryAdjusted{
		InventoryEvent: events.InventoryEvent{ItemID: "SKU-1"},
		LocationID:     "MAIN",
		Delta:          5,
	}))

	assert.Equal(t, "first:InventoryAdjusted", <-received)
	assert.Equal(t, "second:InventoryAdjusted", <-received)

	cancel()
	<-bus.Done()
}

func TestBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := appevents.NewBus(8, zerolog.Nop())

	reached := make(chan struct{}, 1)
	bus.SubscribeFunc(func(event events.Event) error {
		return shared.NewEventError(event.EventType(), context.DeadlineExceeded)
	})
	bus.SubscribeFunc(func(event events.Event) error {
		reached <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)

	require.NoError(t, bus.Publish(events.WorkOrderAssigned{
		WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: "wo-1"},
		Assignee:       "tech-7",
	}))

	select {
	case <-reached:
	case <-time.After(time.Second):
		t.Fatal("second handler was not invoked")
	}
}

func TestBus_PublishAfterCloseFails(t *testing.T) {
	bus := appevents.NewBus(8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)

	cancel()
	bus.Close()
	<-bus.Done()

	err := bus.Publish(events.WorkOrderAssigned{
		WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: "wo-1"},
	})

	var evErr *shared.EventError
	require.ErrorAs(t, err, &evErr)
}

func TestBus_DrainsBufferedEventsOnShutdown(t *testing.T) {
	bus := appevents.NewBus(8, zerolog.Nop())

	var count int
	done := make(chan struct{})
	bus.SubscribeFunc(func(event events.Event) error {
		count++
		if count == 3 {
			close(done)
		}
		return nil
	})

	// Buffer events before the dispatcher starts.
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(events.WorkOrderAssigned{
			WorkOrderEvent: events.WorkOrderEvent{WorkOrderID: "wo-1"},
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	cancel()
	<-bus.Done()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected 3 events dispatched, got %d", count)
	}
	assert.Equal(t, 3, count)
}
