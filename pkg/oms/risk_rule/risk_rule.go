package riskrule

import (
	"errors"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

var (
	ErrPriceLimit = errors.New("price limit violation")
	ErrTickSize   = errors.New("invalid tick size")
)

// RiskRule vets a submission before an order is created. The view carries
// no id yet.
type RiskRule interface {
	Check(order orderbook.OrderView) error
}
