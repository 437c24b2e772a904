package market

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const insufficientLiquidityNote = "Insufficient liquidity to match order fully"

// TradeSubscriber receives every finalised MatchResult, synchronously and in
// placement order.
type TradeSubscriber interface {
	OnMatch(result *MatchResult)
}

// MatchingEngine pairs incoming orders against the resting liquidity of one
// OrderBook. Matching a single instrument is a strict sequential contract, so
// the engine serializes every placement, cancellation, amendment and query
// behind one lock; the book itself is never shared.
type MatchingEngine struct {
	mu          sync.Mutex
	book        *OrderBook
	subscribers []TradeSubscriber
}

func NewMatchingEngine(book *OrderBook) *MatchingEngine {
	return &MatchingEngine{book: book}
}

// Subscribe registers a subscriber for finalised match results.
func (e *MatchingEngine) Subscribe(s TradeSubscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = append(e.subscribers, s)
}

// Unsubscribe removes a previously registered subscriber by reference.
func (e *MatchingEngine) Unsubscribe(s TradeSubscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cur := range e.subscribers {
		if cur == s {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// PlaceOrder matches an order against the book, resting or discarding any
// remainder according to the order's variant, and returns the finalised
// result. Liquidity shortfalls are reported through the result status, not
// as errors.
func (e *MatchingEngine) PlaceOrder(order *Order) (*MatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placeOrder(order)
}

// PlaceOrders applies PlaceOrder to each element strictly in list order.
// Each placement is independently atomic at most; there is no rollback
// across the batch. Processing stops at the first error.
func (e *MatchingEngine) PlaceOrders(orders []*Order) ([]*MatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make([]*MatchResult, 0, len(orders))
	for _, order := range orders {
		res, err := e.placeOrder(order)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// PlaceQuote places a bid and an offer as one submission, bid first.
func (e *MatchingEngine) PlaceQuote(bid, offer *Order) (*MatchResult, *MatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	bidRes, err := e.placeOrder(bid)
	if err != nil {
		return nil, nil, err
	}
	offerRes, err := e.placeOrder(offer)
	if err != nil {
		return bidRes, nil, err
	}
	return bidRes, offerRes, nil
}

// CancelOrder removes a resting order by id, reporting whether it was found.
func (e *MatchingEngine) CancelOrder(id uuid.UUID, side Side) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.CancelOrder(id, side)
}

// AmendOrderVolume changes a resting order's volume without disturbing its
// time priority. Fails fast with ErrInvalidVolume when newVolume <= 0.
func (e *MatchingEngine) AmendOrderVolume(id uuid.UUID, side Side, newVolume int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.AmendOrderVolume(id, side, newVolume)
}

// BestBid returns a copy of the best resting buy order.
func (e *MatchingEngine) BestBid() (Order, bool) {
	return e.BestOrder(BUY)
}

// BestOffer returns a copy of the best resting sell order.
func (e *MatchingEngine) BestOffer() (Order, bool) {
	return e.BestOrder(SELL)
}

// BestOrder returns a copy of the top order of the given side.
func (e *MatchingEngine) BestOrder(side Side) (Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	best := e.book.BestOrder(side)
	if best == nil {
		return Order{}, false
	}
	return *best, true
}

// IsEmpty reports whether the book holds no resting orders.
func (e *MatchingEngine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.IsEmpty()
}

// NumBids returns the number of resting buy orders.
func (e *MatchingEngine) NumBids() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.NumBids()
}

// NumOffers returns the number of resting sell orders.
func (e *MatchingEngine) NumOffers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.NumOffers()
}

func (e *MatchingEngine) placeOrder(order *Order) (*MatchResult, error) {
	if err := validateVolume(order.Volume); err != nil {
		return nil, err
	}

	var res *MatchResult
	var err error
	switch order.Kind {
	case MARKET:
		res, err = e.processMarketOrder(order)
	case LIMIT:
		res, err = e.processLimitOrder(order)
	case FOK:
		res, err = e.processFOKOrder(order)
	case IOC:
		res, err = e.processIOCOrder(order)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOrderType, order.Kind)
	}
	if err != nil {
		return nil, err
	}

	for _, s := range e.subscribers {
		s.OnMatch(res)
	}
	return res, nil
}

// processMarketOrder matches immediately against the best counter-orders. A
// remainder left when the counter side runs dry is abandoned; market orders
// never rest.
func (e *MatchingEngine) processMarketOrder(incoming *Order) (*MatchResult, error) {
	builder := NewMatchResultBuilder(incoming)
	var trades []Trade

	for incoming.Volume > 0 {
		best := e.book.BestOrder(incoming.InverseSide())
		if best == nil {
			if err := builder.AttachNote(insufficientLiquidityNote); err != nil {
				return nil, err
			}
			break
		}

		trade, err := e.resolvePartialMatch(incoming, best)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return finish(builder, incoming, trades)
}

// processLimitOrder matches while the best counter-order is within the
// limit, then rests any remaining volume as a new resting order.
func (e *MatchingEngine) processLimitOrder(incoming *Order) (*MatchResult, error) {
	builder := NewMatchResultBuilder(incoming)
	var trades []Trade

	for incoming.Volume > 0 {
		best := e.book.BestOrder(incoming.InverseSide())
		if best == nil || !incoming.IsInPriceLimit(best.Price) {
			if err := e.book.InsertRestingOrder(incoming); err != nil {
				return nil, err
			}
			break
		}

		trade, err := e.resolvePartialMatch(incoming, best)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return finish(builder, incoming, trades)
}

// processFOKOrder fills the entire order immediately or not at all. The
// match is planned with a read-only walk over the counter side first and
// committed only when the plan covers the full volume, so a rejected FOK
// leaves the book untouched: same orders, same volumes, same time priority.
func (e *MatchingEngine) processFOKOrder(incoming *Order) (*MatchResult, error) {
	builder := NewMatchResultBuilder(incoming)
	var trades []Trade

	plan, covered := e.planFullMatch(incoming)
	if covered {
		for _, volume := range plan {
			trade, err := e.book.TradeTop(incoming, volume)
			if err != nil {
				return nil, err
			}
			incoming.Volume -= volume
			trades = append(trades, trade)
		}
	} else if err := builder.AttachNote(insufficientLiquidityNote); err != nil {
		return nil, err
	}

	return finish(builder, incoming, trades)
}

// processIOCOrder matches whatever volume it can immediately; the remainder
// is discarded, never rested.
func (e *MatchingEngine) processIOCOrder(incoming *Order) (*MatchResult, error) {
	builder := NewMatchResultBuilder(incoming)
	var trades []Trade

	for incoming.Volume > 0 {
		best := e.book.BestOrder(incoming.InverseSide())
		if best == nil || !incoming.IsInPriceLimit(best.Price) {
			break
		}

		trade, err := e.resolvePartialMatch(incoming, best)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}

	return finish(builder, incoming, trades)
}

// resolvePartialMatch trades min(incoming, best) volume against the top of
// the counter side and decrements the incoming order accordingly.
func (e *MatchingEngine) resolvePartialMatch(incoming, best *Order) (Trade, error) {
	volume := min(incoming.Volume, best.Volume)
	trade, err := e.book.TradeTop(incoming, volume)
	if err != nil {
		return Trade{}, err
	}
	incoming.Volume -= volume
	return trade, nil
}

// planFullMatch walks the counter side best-first without mutating the book
// and collects the volume to take from each resting order that would fill
// the incoming order. covered reports whether the plan satisfies the full
// incoming volume.
func (e *MatchingEngine) planFullMatch(incoming *Order) (plan []int64, covered bool) {
	remaining := incoming.Volume
	e.book.scan(incoming.InverseSide(), func(best *Order) bool {
		if !incoming.IsInPriceLimit(best.Price) {
			return false
		}
		take := min(remaining, best.Volume)
		plan = append(plan, take)
		remaining -= take
		return remaining > 0
	})
	return plan, remaining == 0
}

func finish(builder *MatchResultBuilder, incoming *Order, trades []Trade) (*MatchResult, error) {
	if err := builder.Finalise(incoming, trades); err != nil {
		return nil, err
	}
	return builder.Result()
}
