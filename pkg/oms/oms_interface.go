package oms

import (
	"context"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Matcher is the book registry the workers drive. *orderbook.OrderBookManager
// implements it.
type Matcher interface {
	AddOrder(order *orderbook.Order) error
	MatchOrders(symbol string) ([]orderbook.MatchResult, error)
	BuyOrders(symbol string) []*orderbook.Order
	SellOrders(symbol string) []*orderbook.Order
	Snapshot(symbol string) (buys, sells []orderbook.OrderView)
}

// DeadLetterSink receives a copy of every dead-lettered order, e.g. to
// alert an operator. Failures are logged and otherwise ignored.
type DeadLetterSink interface {
	Name() string
	Publish(ctx context.Context, letter DeadLetter) error
}

var _ Matcher = (*orderbook.OrderBookManager)(nil)
