package market

// priceHeap implements heap.Interface over the live price levels of one book
// side. Emptied levels are removed lazily when the top is inspected.
type priceHeap struct {
	prices []float64
	less   func(i, j float64) bool
	index  map[float64]bool
}

func newPriceHeap(less func(i, j float64) bool) *priceHeap {
	return &priceHeap{
		prices: []float64{},
		less:   less,
		index:  make(map[float64]bool),
	}
}

func (h priceHeap) Len() int {
	return len(h.prices)
}

func (h priceHeap) Less(i, j int) bool {
	return h.less(h.prices[i], h.prices[j])
}

func (h priceHeap) Swap(i, j int) {
	h.prices[i], h.prices[j] = h.prices[j], h.prices[i]
}

func (h *priceHeap) Push(x any) {
	price := x.(float64)
	if !h.index[price] {
		h.index[price] = true
		h.prices = append(h.prices, price)
	}
}

func (h *priceHeap) Pop() any {
	n := len(h.prices)
	price := h.prices[n-1]
	h.prices = h.prices[:n-1]
	delete(h.index, price)
	return price
}

func (h *priceHeap) Peek() (float64, bool) {
	if len(h.prices) == 0 {
		return 0, false
	}
	return h.prices[0], true
}
