package shared

import "fmt"

// Failure reason labels used by the command metrics counters.
const (
	ReasonValidationError        = "validation_error"
	ReasonNotFound               = "not_found"
	ReasonInvalidStatus          = "invalid_status"
	ReasonConcurrentModification = "concurrent_modification"
	ReasonBusinessRule           = "business_rule"
	ReasonDatabaseError          = "database_error"
	ReasonEventError             = "event_error"
)

// ValidationError indicates a command input violated its schema or range
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates a referenced aggregate row is absent
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStatusError indicates a state transition not allowed from the
// aggregate's current status
type InvalidStatusError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Entity, e.From, e.To)
}

func NewInvalidStatusError(entity, from, to string) *InvalidStatusError {
	return &InvalidStatusError{Entity: entity, From: from, To: to}
}

// ConcurrentModificationError indicates an optimistic version check failed.
// Callers should re-read the aggregate and retry.
type ConcurrentModificationError struct {
	Entity   string
	ID       string
	Expected int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently (expected version %d)", e.Entity, e.ID, e.Expected)
}

func NewConcurrentModificationError(entity, id string, expected int) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id, Expected: expected}
}

// BusinessRuleError indicates a domain invariant would be violated
// (insufficient inventory, negative balance, ...)
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(format string, args ...interface{}) *BusinessRuleError {
	return &BusinessRuleError{Message: fmt.Sprintf(format, args...)}
}

// DatabaseError wraps an underlying engine failure. Commands never retry
// these; only the outbox worker retries event delivery.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// EventError indicates an in-process event send failed. The command still
// succeeds if the transaction committed; the outbox carries durable delivery.
type EventError struct {
	EventType string
	Err       error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %s: %v", e.EventType, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}

func NewEventError(eventType string, err error) *EventError {
	return &EventError{EventType: eventType, Err: err}
}
