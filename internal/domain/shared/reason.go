package shared

import "errors"

// FailureReason maps an error to the closed set of failure reason labels.
// Unknown errors are attributed to the database layer, which is where
// unexpected driver failures surface.
func FailureReason(err error) string {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		statusErr     *InvalidStatusError
		concurrentErr *ConcurrentModificationError
		ruleErr       *BusinessRuleError
		eventErr      *EventError
	)

	switch {
	case errors.As(err, &validationErr):
		return ReasonValidationError
	case errors.As(err, &notFoundErr):
		return ReasonNotFound
	case errors.As(err, &statusErr):
		return ReasonInvalidStatus
	case errors.As(err, &concurrentErr):
		return ReasonConcurrentModification
	case errors.As(err, &ruleErr):
		return ReasonBusinessRule
	case errors.As(err, &eventErr):
		return ReasonEventError
	default:
		return ReasonDatabaseError
	}
}
