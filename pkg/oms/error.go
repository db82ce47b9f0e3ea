package oms

import "errors"

var (
	ErrInvalidOrder    = errors.New("invalid order")
	ErrShuttingDown    = errors.New("order processor is shutting down")
	ErrOrderIDNotFound = errors.New("orderID not found")
	errProcessingPanic = errors.New("panic while processing order")
)

// ValidationError reports a rejected submission. It matches ErrInvalidOrder
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidOrder
}
