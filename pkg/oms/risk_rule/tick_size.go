package riskrule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/shopspring/decimal"
)

type tickSizeConfig struct {
	MaxPrice float64 `json:"maxPrice"` // 0 = no limit
	Step     float64 `json:"step"`
}

// TickSizeRule holds ascending price tiers per symbol; a price must be a
// multiple of the step of the first tier it falls into.
type TickSizeRule struct {
	Config map[string][]tickSizeConfig
}

// NewTickSizeRuleFromFile loads {"SYMBOL": [{"maxPrice": 10, "step": 0.01}, ...]}.
func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg map[string][]tickSizeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse tick size file %s: %w", path, err)
	}

	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(order orderbook.OrderView) error {
	rules, ok := r.Config[order.Symbol]
	if !ok { // no config -> no rule
		return nil
	}

	price := decimal.NewFromFloat(order.Price)
	for _, rule := range rules {
		if rule.MaxPrice == 0 || order.Price <= rule.MaxPrice {
			if rule.Step <= 0 {
				return nil
			}
			if !price.Mod(decimal.NewFromFloat(rule.Step)).IsZero() {
				return fmt.Errorf("%w: %s price %s not a multiple of %v", ErrTickSize, order.Symbol, price, rule.Step)
			}
			return nil
		}
	}

	return nil
}
