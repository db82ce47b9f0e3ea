package orderbook

import (
	"sort"
	"sync"
)

// OrderBookManager owns one book per symbol. Books and their locks are
// created on first use and live for the process lifetime.
type OrderBookManager struct {
	books sync.Map // symbol -> *orderBook

	cbMu      sync.RWMutex
	callbacks []func([]MatchResult)
}

func NewOrderBookManager() *OrderBookManager {
	return &OrderBookManager{}
}

func (s *OrderBookManager) AddOrder(order *Order) error {
	if order == nil {
		return ErrInvalidOrder
	}
	book := s.getOrCreateBook(order.Symbol)
	return book.addOrder(order)
}

// MatchOrders runs continuous matching on symbol and returns the fills.
// Unknown symbols are a no-op.
func (s *OrderBookManager) MatchOrders(symbol string) ([]MatchResult, error) {
	book, ok := s.getBook(symbol)
	if !ok {
		return nil, nil
	}

	results := book.matchOrders()
	if len(results) > 0 {
		s.cbMu.RLock()
		for _, cb := range s.callbacks {
			cb(results)
		}
		s.cbMu.RUnlock()
	}
	return results, nil
}

// BuyOrders returns a copy of the resting buy orders, best first.
func (s *OrderBookManager) BuyOrders(symbol string) []*Order {
	book, ok := s.getBook(symbol)
	if !ok {
		return []*Order{}
	}
	return book.orders(BUY)
}

// SellOrders returns a copy of the resting sell orders, best first.
func (s *OrderBookManager) SellOrders(symbol string) []*Order {
	book, ok := s.getBook(symbol)
	if !ok {
		return []*Order{}
	}
	return book.orders(SELL)
}

// Snapshot copies both sides of symbol, best first, under a single lock
// acquisition so the two sides and all quantities are mutually consistent.
func (s *OrderBookManager) Snapshot(symbol string) (buys, sells []OrderView) {
	book, ok := s.getBook(symbol)
	if !ok {
		return []OrderView{}, []OrderView{}
	}
	return book.snapshot()
}

func (s *OrderBookManager) Depth(symbol string) (bids, asks int) {
	book, ok := s.getBook(symbol)
	if !ok {
		return 0, 0
	}
	return book.depth()
}

func (s *OrderBookManager) Symbols() []string {
	var symbols []string
	s.books.Range(func(k, _ any) bool {
		symbols = append(symbols, k.(string))
		return true
	})
	sort.Strings(symbols)
	return symbols
}

// RegisterTradeCallback adds fn to the callbacks run after every match that
// produced fills. Callbacks run outside the book lock.
func (s *OrderBookManager) RegisterTradeCallback(fn func([]MatchResult)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.callbacks = append(s.callbacks, fn)
}

func (s *OrderBookManager) getBook(symbol string) (*orderBook, bool) {
	val, ok := s.books.Load(symbol)
	if !ok {
		return nil, false
	}
	return val.(*orderBook), true
}

func (s *OrderBookManager) getOrCreateBook(symbol string) *orderBook {
	if val, ok := s.books.Load(symbol); ok {
		return val.(*orderBook)
	}

	actual, _ := s.books.LoadOrStore(symbol, newOrderBook(symbol))
	return actual.(*orderBook)
}
