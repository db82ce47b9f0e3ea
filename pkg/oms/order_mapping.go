package oms

import (
	"github.com/joripage/matching-engine/pkg/orderbook"
)

func (s *OMS) AddOrderToMap(order *orderbook.Order) {
	s.orderIDMapping.Store(order.ID, order)
}

func (s *OMS) GetOrderByOrderID(orderID int64) (*orderbook.Order, error) {
	order, ok := s.orderIDMapping.Load(orderID)
	if !ok {
		return nil, ErrOrderIDNotFound
	}

	return order.(*orderbook.Order), nil
}

func (s *OMS) DeleteOrderByOrderID(orderID int64) {
	s.orderIDMapping.Delete(orderID)
}
