package services

import "fmt"

// Code classifies a failure so callers can branch without parsing prose.
type Code string

const (
	CodeValidation    Code = "validation_error"
	CodeNotFound      Code = "not_found"
	CodeConflict      Code = "conflict"
	CodeAuthorization Code = "authorization_error"
	CodeDependency    Code = "dependency_error"
)

// Error is the only error type the service layer returns. Business-rule
// failures are fixed sentinel values so handlers and tests can compare
// with errors.Is.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

var (
	ErrNoItems               = &Error{Code: CodeValidation, Message: "order must contain at least one item"}
	ErrInvalidQuantity       = &Error{Code: CodeValidation, Message: "item quantity must be greater than zero"}
	ErrInvalidItem           = &Error{Code: CodeValidation, Message: "one or more food items are invalid"}
	ErrInvalidStatusValue    = &Error{Code: CodeValidation, Message: "status value outside the allowed set"}
	ErrNoFieldsToUpdate      = &Error{Code: CodeValidation, Message: "nothing to update: supply item updates, order status or payment status"}
	ErrOrderNotFound         = &Error{Code: CodeNotFound, Message: "order not found"}
	ErrTableNotFound         = &Error{Code: CodeNotFound, Message: "table not found"}
	ErrItemNotFound          = &Error{Code: CodeNotFound, Message: "order item not found"}
	ErrOrderAlreadyCancelled = &Error{Code: CodeConflict, Message: "order has been cancelled and can no longer change"}
	ErrOrderAlreadyCompleted = &Error{Code: CodeConflict, Message: "order is completed and payment is final"}
	ErrOrderNotReady         = &Error{Code: CodeConflict, Message: "payment is only accepted once the order is ready"}
	ErrPaymentRequired       = &Error{Code: CodeConflict, Message: "order cannot complete before payment is received"}
	ErrInvalidTransition     = &Error{Code: CodeConflict, Message: "status transition not permitted from the current state"}
	ErrConflict              = &Error{Code: CodeConflict, Message: "concurrent update, retries exhausted"}
	ErrTableOccupied         = &Error{Code: CodeConflict, Message: "table has an open order"}
)

// DependencyError wraps an unexpected persistence or catalog failure with
// a generic message so internals never leak to the client. The cause stays
// reachable through Unwrap for logging.
func DependencyError(err error) *Error {
	return &Error{Code: CodeDependency, Message: "a downstream dependency failed, try again later", cause: err}
}
