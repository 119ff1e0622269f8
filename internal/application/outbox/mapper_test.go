package outbox_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "github.com/harborline/omscore/internal/application/outbox"
	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/outbox"
)

func record(t *testing.T, event events.Event) *outbox.Record {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return &outbox.Record{
		ID:            "row-1",
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.EventType(),
		Payload:       payload,
	}
}

func TestMapper_RestoresVariantDiscriminator(t *testing.T) {
	mapper := appoutbox.NewMapper()
	original := events.NewWorkOrderTransitioned(events.TypeWorkOrderCompleted, "wo-1", "in_progress", "completed", 4)

	// The discriminator is json:"-": the row's event_type column carries it.
	mapped := mapper.Map(record(t, original))

	transitioned, ok := mapped.(events.WorkOrderTransitioned)
	require.True(t, ok, "got %T", mapped)
	assert.Equal(t, events.TypeWorkOrderCompleted, transitioned.EventType())
	assert.Equal(t, "wo-1", transitioned.AggregateID())
	assert.Equal(t, "in_progress", transitioned.FromStatus)
	assert.Equal(t, "completed", transitioned.ToStatus)
	assert.Equal(t, 4, transitioned.Version)
}

func TestMapper_ASNTransitionFamily(t *testing.T) {
	mapper := appoutbox.NewMapper()

	for _, eventType := range []string{
		events.TypeASNSubmitted, events.TypeASNInTransit, events.TypeASNDelivered,
		events.TypeASNOnHold, events.TypeASNReleasedFromHold, events.TypeASNCancelled,
	} {
		original := events.NewASNTransitioned(eventType, "asn-1", "submitted", "in_transit", "carrier picked up", 2)
		mapped := mapper.Map(record(t, original))

		transitioned, ok := mapped.(events.ASNTransitioned)
		require.True(t, ok, "%s mapped to %T", eventType, mapped)
		assert.Equal(t, eventType, transitioned.EventType())
	}
}

func TestMapper_InventoryEvent(t *testing.T) {
	mapper := appoutbox.NewMapper()
	original := events.NewInventoryAdjusted("SKU-1", "MAIN", 5, 10, 15, "receipt", "txn-1")

	mapped := mapper.Map(record(t, original))

	adjusted, ok := mapped.(events.InventoryAdjusted)
	require.True(t, ok, "got %T", mapped)
	assert.Equal(t, 5, adjusted.Delta)
	assert.Equal(t, 15, adjusted.NewQuantity)
	assert.Equal(t, "MAIN", adjusted.LocationID)
}

func TestMapper_UnknownTypeFallsBackToWithData(t *testing.T) {
	mapper := appoutbox.NewMapper()
	row := &outbox.Record{
		ID:            "row-1",
		AggregateType: "shipment",
		AggregateID:   "shp-1",
		EventType:     "ShipmentManifested",
		Payload:       []byte(`{"carrier":"NorthFreight"}`),
	}

	mapped := mapper.Map(row)

	fallback, ok := mapped.(events.WithData)
	require.True(t, ok, "got %T", mapped)
	assert.Equal(t, "ShipmentManifested", fallback.EventType())
	assert.Equal(t, "shp-1", fallback.AggregateID())
	assert.Equal(t, "NorthFreight", fallback.Data["carrier"])
}

func TestMapper_MalformedPayloadNeverDropsRow(t *testing.T) {
	mapper := appoutbox.NewMapper()
	row := &outbox.Record{
		ID:            "row-1",
		AggregateType: events.AggregateOrder,
		AggregateID:   "ord-1",
		EventType:     events.TypeOrderCreated,
		Payload:       []byte(`not json`),
	}

	mapped := mapper.Map(row)

	fallback, ok := mapped.(events.WithData)
	require.True(t, ok, "got %T", mapped)
	assert.Equal(t, events.TypeOrderCreated, fallback.EventType())
	assert.Empty(t, fallback.Data)
}
