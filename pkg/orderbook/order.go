package orderbook

import (
	"fmt"
	"sync/atomic"
	"time"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

// Valid reports whether s is one of the two book sides.
func (s Side) Valid() bool {
	return s == BUY || s == SELL
}

// Order is a limit order resting in (or headed for) a symbol book.
// Everything except the remaining quantity is fixed at construction.
type Order struct {
	ID         int64
	Symbol     string
	Side       Side
	Price      float64
	InitialQty int64
	CreatedAt  time.Time // monotonic, tie-break only

	qty atomic.Int64
}

// OrderView is a point-in-time copy of an order, safe to hand to callers.
type OrderView struct {
	ID       int64   `json:"id"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
	Side     Side    `json:"type"`
}

func NewOrder(id int64, symbol string, price float64, qty int64, side Side) *Order {
	o := &Order{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Price:      price,
		InitialQty: qty,
		CreatedAt:  time.Now(),
	}
	o.qty.Store(qty)
	return o
}

// Qty returns the remaining quantity.
func (o *Order) Qty() int64 {
	return o.qty.Load()
}

func (o *Order) fill(qty int64) int64 {
	return o.qty.Add(-qty)
}

func (o *Order) View() OrderView {
	return OrderView{
		ID:       o.ID,
		Symbol:   o.Symbol,
		Price:    o.Price,
		Quantity: o.Qty(),
		Side:     o.Side,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%d, symbol=%s, price=%.2f, qty=%d, side=%s}",
		o.ID, o.Symbol, o.Price, o.Qty(), o.Side)
}

// Less is the matching priority: best price first, then earliest CreatedAt,
// then lowest ID. Orders of different sides sort BUY before SELL.
func Less(a, b *Order) bool {
	if a.Side != b.Side {
		return a.Side == BUY
	}
	if a.Price != b.Price {
		if a.Side == BUY {
			return a.Price > b.Price
		}
		return a.Price < b.Price
	}
	return timeLess(a, b)
}

// timeLess orders two orders of the same price level.
func timeLess(a, b *Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Sequence hands out strictly increasing order ids. The zero value starts at 1.
type Sequence struct {
	last atomic.Int64
}

func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}
