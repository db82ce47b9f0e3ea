package riskrule

import (
	"fmt"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

type PriceLimit struct {
	Ceil  float64 `yaml:"ceil"`
	Floor float64 `yaml:"floor"`
}

// LimitPriceRule keeps prices inside a per-symbol band. Symbols without a
// band are not checked.
type LimitPriceRule struct {
	prices map[string]PriceLimit
}

func NewLimitPriceRule(prices map[string]PriceLimit) *LimitPriceRule {
	return &LimitPriceRule{prices: prices}
}

func (r *LimitPriceRule) Check(order orderbook.OrderView) error {
	limit, ok := r.prices[order.Symbol]
	if !ok {
		return nil
	}
	if order.Price > limit.Ceil || order.Price < limit.Floor {
		return fmt.Errorf("%w: %s %.4f outside [%.4f, %.4f]", ErrPriceLimit, order.Symbol, order.Price, limit.Floor, limit.Ceil)
	}
	return nil
}
