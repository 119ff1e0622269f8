package order

import "github.com/harborline/omscore/internal/domain/shared"

// Status is the closed order status set. Ingress must go through ParseStatus;
// raw strings are never trusted.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusReturned   Status = "returned"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusOnHold     Status = "on_hold"
)

// allowedTransitions is the legal-transition matrix. Absent keys are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusOnHold},
	StatusProcessing: {StatusShipped, StatusCancelled, StatusOnHold},
	StatusOnHold:     {StatusProcessing, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusRefunded, StatusReturned},
	StatusReturned:   {StatusRefunded},
}

// ParseStatus validates a raw status string against the closed set.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusReturned, StatusCancelled, StatusRefunded, StatusOnHold:
		return s, nil
	}
	return "", shared.NewValidationError("status", "unknown order status: "+raw)
}

// CanTransition reports whether from -> to is in the matrix.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}
