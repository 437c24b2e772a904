package market

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

// OrderBook stores resting priced orders for one instrument with price-time
// priority. Each side is a set of price levels; a max-heap orders bid levels
// and a min-heap ask levels, and within a level the FIFO queue preserves
// submission order. The book is single-owner and unsynchronized; the
// MatchingEngine is the mutual-exclusion boundary around it.
type OrderBook struct {
	bids map[float64]*deque.Deque[*Order]
	asks map[float64]*deque.Deque[*Order]

	bidHeap *priceHeap
	askHeap *priceHeap
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		bids:    make(map[float64]*deque.Deque[*Order]),
		asks:    make(map[float64]*deque.Deque[*Order]),
		bidHeap: newPriceHeap(func(i, j float64) bool { return i > j }), // Max-heap
		askHeap: newPriceHeap(func(i, j float64) bool { return i < j }), // Min-heap
	}
}

func (b *OrderBook) sideLevels(side Side) (map[float64]*deque.Deque[*Order], *priceHeap) {
	if side == BUY {
		return b.bids, b.bidHeap
	}
	return b.asks, b.askHeap
}

// BestBid peeks the highest-priced resting buy order, nil when there is none.
func (b *OrderBook) BestBid() *Order {
	return b.peekBest(BUY)
}

// BestOffer peeks the lowest-priced resting sell order, nil when there is none.
func (b *OrderBook) BestOffer() *Order {
	return b.peekBest(SELL)
}

// BestOrder routes to BestBid or BestOffer based on a dynamic side argument.
func (b *OrderBook) BestOrder(side Side) *Order {
	if side == BUY {
		return b.BestBid()
	}
	return b.BestOffer()
}

func (b *OrderBook) peekBest(side Side) *Order {
	book, prices := b.sideLevels(side)
	for {
		bestPrice, ok := prices.Peek()
		if !ok {
			return nil
		}
		q := book[bestPrice]
		if q == nil || q.Len() == 0 {
			heap.Pop(prices)
			delete(book, bestPrice)
			continue
		}
		return q.Front()
	}
}

// InsertRestingOrder stores an order in the book. The order keeps its
// submission-time priority within its price level.
func (b *OrderBook) InsertRestingOrder(order *Order) error {
	if !order.CanRestInBook() {
		return ErrCannotRestInBook
	}
	if err := validatePrice(order.Price); err != nil {
		return err
	}

	book, prices := b.sideLevels(order.Side)
	if book[order.Price] == nil {
		book[order.Price] = &deque.Deque[*Order]{}
		heap.Push(prices, order.Price)
	}
	book[order.Price].PushBack(order)
	return nil
}

// CancelOrder removes the order with the given id from one side of the book.
// It reports whether such an order was present. The search is a linear scan
// over the side's levels.
func (b *OrderBook) CancelOrder(id uuid.UUID, side Side) bool {
	book, _ := b.sideLevels(side)
	for price, q := range book {
		idx := q.Index(func(o *Order) bool { return o.ID == id })
		if idx < 0 {
			continue
		}
		q.Remove(idx)
		if q.Len() == 0 {
			delete(book, price)
		}
		return true
	}
	return false
}

// AmendOrderVolume changes the volume of a resting order. The mutation is
// in place: volume is not a sort key of either the level heap or the FIFO
// queue, so the order keeps its time priority. Reports whether the order was
// found; newVolume must be positive.
func (b *OrderBook) AmendOrderVolume(id uuid.UUID, side Side, newVolume int64) (bool, error) {
	if err := validateVolume(newVolume); err != nil {
		return false, err
	}

	book, _ := b.sideLevels(side)
	for _, q := range book {
		idx := q.Index(func(o *Order) bool { return o.ID == id })
		if idx < 0 {
			continue
		}
		q.At(idx).Volume = newVolume
		return true, nil
	}
	return false, nil
}

// TradeTop takes volumeToTrade from the best resting counter-order of the
// incoming order and returns the trade conducted. Shrinking or removing the
// resting order and producing the trade record happen in one step so the two
// cannot drift out of sync. Fails with ErrOrderNotFound when the counter
// side is empty.
func (b *OrderBook) TradeTop(incoming *Order, volumeToTrade int64) (Trade, error) {
	best := b.peekBest(incoming.InverseSide())
	if best == nil {
		return Trade{}, ErrOrderNotFound
	}
	if volumeToTrade <= 0 || volumeToTrade > best.Volume {
		return Trade{}, fmt.Errorf("%w: cannot trade %d against resting volume %d",
			ErrInvalidVolume, volumeToTrade, best.Volume)
	}

	if best.Volume == volumeToTrade {
		book, _ := b.sideLevels(best.Side)
		q := book[best.Price]
		q.PopFront()
		if q.Len() == 0 {
			delete(book, best.Price)
		}
	} else {
		best.Volume -= volumeToTrade
	}

	offererID, bidderID := incoming.ID, best.ID
	if incoming.Side == BUY {
		offererID, bidderID = best.ID, incoming.ID
	}

	return Trade{
		OffererID: offererID,
		BidderID:  bidderID,
		Price:     best.Price,
		Volume:    volumeToTrade,
	}, nil
}

// IsEmpty reports whether no orders rest on either side.
func (b *OrderBook) IsEmpty() bool {
	return b.NumBids() == 0 && b.NumOffers() == 0
}

// NumBids returns the number of resting buy orders.
func (b *OrderBook) NumBids() int {
	return countOrders(b.bids)
}

// NumOffers returns the number of resting sell orders.
func (b *OrderBook) NumOffers() int {
	return countOrders(b.asks)
}

func countOrders(book map[float64]*deque.Deque[*Order]) int {
	n := 0
	for _, q := range book {
		n += q.Len()
	}
	return n
}

// scan visits one side's resting orders in priority order, best first, until
// fn returns false. The walk is read-only; the FOK planning pass relies on
// that.
func (b *OrderBook) scan(side Side, fn func(*Order) bool) {
	book, _ := b.sideLevels(side)

	prices := make([]float64, 0, len(book))
	for price, q := range book {
		if q.Len() > 0 {
			prices = append(prices, price)
		}
	}
	if side == BUY {
		sort.Sort(sort.Reverse(sort.Float64Slice(prices)))
	} else {
		sort.Float64s(prices)
	}

	for _, price := range prices {
		q := book[price]
		for i := 0; i < q.Len(); i++ {
			if !fn(q.At(i)) {
				return
			}
		}
	}
}
