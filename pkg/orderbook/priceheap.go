package orderbook

import "sort"

// priceLevels is a heap.Interface over the distinct prices of one book side,
// best price at the root. bookSide.levels decides when a price is pushed or
// popped, so the heap never holds duplicates.
type priceLevels struct {
	prices []float64
	better func(a, b float64) bool
}

func (h priceLevels) Len() int           { return len(h.prices) }
func (h priceLevels) Less(i, j int) bool { return h.better(h.prices[i], h.prices[j]) }
func (h priceLevels) Swap(i, j int)      { h.prices[i], h.prices[j] = h.prices[j], h.prices[i] }

func (h *priceLevels) Push(x any) {
	h.prices = append(h.prices, x.(float64))
}

func (h *priceLevels) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	return price
}

func (h *priceLevels) best() (float64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}

// sorted copies the prices best first.
func (h *priceLevels) sorted() []float64 {
	out := make([]float64, len(h.prices))
	copy(out, h.prices)
	sort.Slice(out, func(i, j int) bool { return h.better(out[i], out[j]) })
	return out
}
