package oms

import (
	"sort"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// GetByID returns the order with its current remaining quantity. Orders
// stay retrievable after they are fully filled.
func (s *OMS) GetByID(id int64) (orderbook.OrderView, bool) {
	order, err := s.GetOrderByOrderID(id)
	if err != nil {
		return orderbook.OrderView{}, false
	}
	return order.View(), true
}

// GetBySymbol returns a page of the resting orders of symbol in matching
// priority, buys before sells.
func (s *OMS) GetBySymbol(symbol string, offset, limit int) []orderbook.OrderView {
	var merged []orderbook.OrderView
	if s.cfg.ReadConsistency == ReadSnapshot {
		buys, sells := s.matcher.Snapshot(symbol)
		merged = append(buys, sells...)
	} else {
		orders := append(s.matcher.BuyOrders(symbol), s.matcher.SellOrders(symbol)...)
		sort.SliceStable(orders, func(i, j int) bool { return orderbook.Less(orders[i], orders[j]) })
		merged = make([]orderbook.OrderView, len(orders))
		for i, o := range orders {
			merged[i] = o.View()
		}
	}

	return paginate(merged, offset, limit)
}

func paginate(views []orderbook.OrderView, offset, limit int) []orderbook.OrderView {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || offset >= len(views) {
		return []orderbook.OrderView{}
	}
	end := len(views)
	if limit < end-offset {
		end = offset + limit
	}

	page := make([]orderbook.OrderView, end-offset)
	copy(page, views[offset:end])
	return page
}
