package orderbook

import "errors"

var (
	ErrInvalidOrder   = errors.New("invalid order")
	ErrDuplicateOrder = errors.New("order already resting")
	errSymbolMismatch = errors.New("order symbol does not match book")
)
