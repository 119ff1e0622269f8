// Package events defines the closed set of domain events emitted by the
// transactional core. Events are value types: they carry ids and copies of
// the relevant fields, never references back into aggregates.
package events

// Aggregate type names used on outbox rows and for bus routing.
const (
	AggregateOrder     = "order"
	AggregateInventory = "inventory"
	AggregateASN       = "asn"
	AggregateWorkOrder = "work_order"
	AggregateReturn    = "return"
	AggregateWarranty  = "warranty"
	AggregatePayment   = "payment"
)

// Event is implemented by every domain event variant.
type Event interface {
	EventType() string
	AggregateType() string
	AggregateID() string
}

// Handler consumes events dispatched by the in-process bus.
type Handler interface {
	Handle(event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event Event) error

func (f HandlerFunc) Handle(event Event) error {
	return f(event)
}

// WithData is the opaque fallback for outbox rows whose event_type has no
// registered mapping, or whose payload cannot be decoded. It is never
// dropped: downstream consumers get the raw payload for inspection.
type WithData struct {
	Type      string
	Aggregate string
	ID        string
	Data      map[string]interface{}
}

func (e WithData) EventType() string     { return e.Type }
func (e WithData) AggregateType() string { return e.Aggregate }
func (e WithData) AggregateID() string   { return e.ID }
