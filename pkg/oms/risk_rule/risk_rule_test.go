package riskrule

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

func TestLimitPriceRule(t *testing.T) {
	rule := NewLimitPriceRule(map[string]PriceLimit{
		"AAPL": {Ceil: 200, Floor: 100},
	})

	cases := []struct {
		symbol string
		price  float64
		ok     bool
	}{
		{"AAPL", 150, true},
		{"AAPL", 100, true},
		{"AAPL", 200.01, false},
		{"AAPL", 99.99, false},
		{"MSFT", 5000, true},
	}
	for _, c := range cases {
		err := rule.Check(orderbook.OrderView{Symbol: c.symbol, Price: c.price})
		if c.ok && err != nil {
			t.Errorf("%s@%v: unexpected error %v", c.symbol, c.price, err)
		}
		if !c.ok && !errors.Is(err, ErrPriceLimit) {
			t.Errorf("%s@%v: expected ErrPriceLimit, got %v", c.symbol, c.price, err)
		}
	}
}

func TestTickSizeRuleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.json")
	data := `{"VN30": [{"maxPrice": 10, "step": 0.01}, {"maxPrice": 0, "step": 0.05}]}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	rule, err := NewTickSizeRuleFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cases := []struct {
		price float64
		ok    bool
	}{
		{9.99, true},
		{9.995, false},
		{10.05, true},
		{10.07, false},
		{250, true},
	}
	for _, c := range cases {
		err := rule.Check(orderbook.OrderView{Symbol: "VN30", Price: c.price})
		if c.ok && err != nil {
			t.Errorf("price %v: unexpected error %v", c.price, err)
		}
		if !c.ok && !errors.Is(err, ErrTickSize) {
			t.Errorf("price %v: expected ErrTickSize, got %v", c.price, err)
		}
	}

	if err := rule.Check(orderbook.OrderView{Symbol: "OTHER", Price: 1.23456}); err != nil {
		t.Errorf("unconfigured symbol must pass, got %v", err)
	}
}

func TestTickSizeRuleBadFile(t *testing.T) {
	if _, err := NewTickSizeRuleFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
