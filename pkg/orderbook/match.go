package orderbook

// MatchResult is one fill between the best bid and the best ask.
type MatchResult struct {
	Symbol      string
	BuyOrderID  int64
	SellOrderID int64
	Price       float64
	Qty         int64
}
