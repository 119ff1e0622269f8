package outbox

import (
	"encoding/json"

	"github.com/harborline/omscore/internal/domain/events"
	"github.com/harborline/omscore/internal/domain/outbox"
)

// Mapper turns claimed outbox rows back into typed domain events. Unknown
// event types and malformed payloads fall back to the opaque WithData
// variant; the mapper never drops a row and never panics.
type Mapper struct{}

// NewMapper creates the outbox row mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map resolves the typed event for a record.
func (m *Mapper) Map(record *outbox.Record) events.Event {
	event, err := m.decode(record)
	if err != nil {
		return m.fallback(record)
	}
	return event
}

func (m *Mapper) decode(record *outbox.Record) (events.Event, error) {
	payload := record.Payload
	eventType := record.EventType

	switch eventType {
	case events.TypeOrderCreated:
		return decode[events.OrderCreated](payload)
	case events.TypeOrderUpdated:
		return decode[events.OrderUpdated](payload)
	case events.TypeOrderProcessing, events.TypeOrderCancelled, events.TypeOrderShipped, events.TypeOrderDelivered,
		events.TypeOrderReturned, events.TypeOrderRefunded, events.TypeOrderOnHold,
		events.TypeOrderReleasedFromHold:
		v, err := decode[events.OrderStatusChanged](payload)
		v.Type = eventType
		return v, err
	case events.TypeOrderItemAdded:
		return decode[events.OrderItemAdded](payload)
	case events.TypeOrderItemRemoved:
		return decode[events.OrderItemRemoved](payload)
	case events.TypeOrderNoteAdded:
		return decode[events.OrderNoteAdded](payload)
	case events.TypeOrderShippingAddressUpdated, events.TypeOrderBillingAddressUpdated:
		v, err := decode[events.OrderAddressUpdated](payload)
		v.Type = eventType
		return v, err
	case events.TypeOrderPaymentMethodUpdated:
		return decode[events.OrderPaymentMethodUpdated](payload)

	case events.TypeInventoryAdjusted:
		return decode[events.InventoryAdjusted](payload)
	case events.TypeInventoryReserved:
		return decode[events.InventoryReserved](payload)
	case events.TypePartialReservationWarning:
		return decode[events.PartialReservationWarning](payload)
	case events.TypeInventoryReleased:
		return decode[events.InventoryReleased](payload)
	case events.TypeInventoryAllocated:
		return decode[events.InventoryAllocated](payload)
	case events.TypeInventoryDeallocated:
		return decode[events.InventoryDeallocated](payload)
	case events.TypeInventoryReceived:
		return decode[events.InventoryReceived](payload)
	case events.TypeInventoryTransferred:
		return decode[events.InventoryTransferred](payload)
	case events.TypeInventoryCycleCountCompleted:
		return decode[events.InventoryCycleCountCompleted](payload)
	case events.TypeInventoryLevelSet:
		return decode[events.InventoryLevelSet](payload)
	case events.TypeSafetyStockAlert:
		return decode[events.SafetyStockAlert](payload)

	case events.TypeWorkOrderCreated:
		return decode[events.WorkOrderCreated](payload)
	case events.TypeWorkOrderUpdated:
		return decode[events.WorkOrderUpdated](payload)
	case events.TypeWorkOrderCancelled, events.TypeWorkOrderStarted, events.TypeWorkOrderCompleted,
		events.TypeWorkOrderIssued, events.TypeWorkOrderPicked, events.TypeWorkOrderYielded,
		events.TypeWorkOrderScheduled:
		v, err := decode[events.WorkOrderTransitioned](payload)
		v.Type = eventType
		return v, err
	case events.TypeWorkOrderAssigned:
		return decode[events.WorkOrderAssigned](payload)
	case events.TypeWorkOrderUnassigned:
		return decode[events.WorkOrderUnassigned](payload)
	case events.TypeWorkOrderNoteAdded:
		return decode[events.WorkOrderNoteAdded](payload)

	case events.TypeASNCreated:
		return decode[events.ASNCreated](payload)
	case events.TypeASNUpdated:
		return decode[events.ASNUpdated](payload)
	case events.TypeASNCancelled, events.TypeASNSubmitted, events.TypeASNInTransit,
		events.TypeASNDelivered, events.TypeASNOnHold, events.TypeASNReleasedFromHold:
		v, err := decode[events.ASNTransitioned](payload)
		v.Type = eventType
		return v, err
	case events.TypeASNItemAdded:
		return decode[events.ASNItemAdded](payload)
	case events.TypeASNItemRemoved:
		return decode[events.ASNItemRemoved](payload)
	case events.TypeASNSupplierNotified:
		return decode[events.ASNSupplierNotified](payload)

	case events.TypeReturnCreated:
		return decode[events.ReturnCreated](payload)
	case events.TypeReturnApproved, events.TypeReturnRejected, events.TypeReturnCancelled,
		events.TypeReturnReceived, events.TypeReturnCompleted, events.TypeReturnReopened:
		v, err := decode[events.ReturnTransitioned](payload)
		v.Type = eventType
		return v, err
	case events.TypeReturnRefunded:
		return decode[events.ReturnRefunded](payload)

	case events.TypeWarrantyCreated:
		return decode[events.WarrantyCreated](payload)
	case events.TypeWarrantyVoided:
		return decode[events.WarrantyVoided](payload)
	case events.TypeWarrantyClaimed:
		return decode[events.WarrantyClaimed](payload)
	case events.TypeWarrantyClaimApproved, events.TypeWarrantyClaimRejected:
		v, err := decode[events.WarrantyClaimDecided](payload)
		v.Type = eventType
		return v, err

	case events.TypePaymentAuthorized, events.TypePaymentCaptured, events.TypePaymentRefunded,
		events.TypePaymentFailed, events.TypePaymentVoided:
		v, err := decode[events.PaymentRecorded](payload)
		v.Type = eventType
		return v, err
	}

	return nil, errUnknownEventType
}

// fallback wraps the raw payload. A payload that is not even a JSON object
// still produces an event with empty data.
func (m *Mapper) fallback(record *outbox.Record) events.Event {
	data := map[string]interface{}{}
	_ = json.Unmarshal(record.Payload, &data)
	return events.WithData{
		Type:      record.EventType,
		Aggregate: record.AggregateType,
		ID:        record.AggregateID,
		Data:      data,
	}
}

func decode[T events.Event](payload []byte) (T, error) {
	var v T
	err := json.Unmarshal(payload, &v)
	return v, err
}

var errUnknownEventType = unknownEventTypeError{}

type unknownEventTypeError struct{}

func (unknownEventTypeError) Error() string { return "unknown event type" }
