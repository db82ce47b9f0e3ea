// file: pkg/orderbook/orderbook.go

package orderbook

import (
	"container/heap"
	"fmt"
	"math"
	"sync"

	"github.com/gammazero/deque"
)

// bookSide holds one side of a symbol book: a heap of distinct prices and,
// per price, a FIFO of orders in time priority.
type bookSide struct {
	levels map[float64]*deque.Deque[*Order]
	prices *priceLevels
	count  int
}

func newBookSide(better func(a, b float64) bool) *bookSide {
	return &bookSide{
		levels: make(map[float64]*deque.Deque[*Order]),
		prices: &priceLevels{better: better},
	}
}

func (s *bookSide) insert(order *Order) {
	q := s.levels[order.Price]
	if q == nil {
		q = &deque.Deque[*Order]{}
		s.levels[order.Price] = q
		heap.Push(s.prices, order.Price)
	}

	// workers may deliver orders out of creation order, walk back from the tail
	at := q.Len()
	for at > 0 && timeLess(order, q.At(at-1)) {
		at--
	}
	q.Insert(at, order)
	s.count++
}

func (s *bookSide) contains(order *Order) bool {
	q := s.levels[order.Price]
	if q == nil {
		return false
	}
	return q.Index(func(o *Order) bool { return o.ID == order.ID }) >= 0
}

func (s *bookSide) best() (*Order, bool) {
	price, ok := s.prices.best()
	if !ok {
		return nil, false
	}
	return s.levels[price].Front(), true
}

// popBest removes the best order and drops its level once empty.
func (s *bookSide) popBest() {
	price, ok := s.prices.best()
	if !ok {
		return
	}
	q := s.levels[price]
	q.PopFront()
	s.count--
	if q.Len() == 0 {
		heap.Pop(s.prices)
		delete(s.levels, price)
	}
}

// orders copies the side out in priority order.
func (s *bookSide) orders() []*Order {
	out := make([]*Order, 0, s.count)
	for _, price := range s.prices.sorted() {
		q := s.levels[price]
		for i := 0; i < q.Len(); i++ {
			out = append(out, q.At(i))
		}
	}
	return out
}

type orderBook struct {
	symbol string

	buys  *bookSide
	sells *bookSide

	mu sync.Mutex
}

func newOrderBook(symbol string) *orderBook {
	return &orderBook{
		symbol: symbol,
		buys:   newBookSide(func(i, j float64) bool { return i > j }), // Max-heap
		sells:  newBookSide(func(i, j float64) bool { return i < j }), // Min-heap
	}
}

func (ob *orderBook) side(side Side) *bookSide {
	if side == BUY {
		return ob.buys
	}
	return ob.sells
}

func (ob *orderBook) addOrder(order *Order) error {
	if order == nil || order.Qty() < 1 || !order.Side.Valid() || order.Price < 0 || math.IsNaN(order.Price) {
		return ErrInvalidOrder
	}
	if order.Symbol != ob.symbol {
		return fmt.Errorf("%w: %q into %q", errSymbolMismatch, order.Symbol, ob.symbol)
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	sideBook := ob.side(order.Side)
	if sideBook.contains(order) {
		return ErrDuplicateOrder
	}
	sideBook.insert(order)
	return nil
}

// matchOrders fills the best bid against the best ask until the book no
// longer crosses. A single call may consume any number of resting orders.
func (ob *orderBook) matchOrders() []MatchResult {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var results []MatchResult
	for {
		buy, ok := ob.buys.best()
		if !ok {
			break
		}
		sell, ok := ob.sells.best()
		if !ok || buy.Price < sell.Price {
			break
		}

		matchQty := min(buy.Qty(), sell.Qty())
		buy.fill(matchQty)
		sell.fill(matchQty)

		// the order that rested first sets the price
		price := sell.Price
		if timeLess(buy, sell) {
			price = buy.Price
		}
		results = append(results, MatchResult{
			Symbol:      ob.symbol,
			BuyOrderID:  buy.ID,
			SellOrderID: sell.ID,
			Price:       price,
			Qty:         matchQty,
		})

		if buy.Qty() == 0 {
			ob.buys.popBest()
		}
		if sell.Qty() == 0 {
			ob.sells.popBest()
		}
	}

	return results
}

func (ob *orderBook) orders(side Side) []*Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.side(side).orders()
}

// snapshot captures both sides, quantities included, under one lock hold.
func (ob *orderBook) snapshot() (buys, sells []OrderView) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return views(ob.buys.orders()), views(ob.sells.orders())
}

func views(orders []*Order) []OrderView {
	out := make([]OrderView, len(orders))
	for i, o := range orders {
		out[i] = o.View()
	}
	return out
}

func (ob *orderBook) depth() (bids, asks int) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	return ob.buys.count, ob.sells.count
}
