package main

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/openclob/matchcore/pkg/market"
)

const (
	numOrders = 1_000_000
	minPrice  = 100.0
	maxPrice  = 200.0
	minQty    = 1
	maxQty    = 100
)

func randomOrder() *market.Order {
	side := market.BUY
	if rand.Intn(2) == 0 {
		side = market.SELL
	}
	price := minPrice + rand.Float64()*(maxPrice-minPrice)
	price = float64(int(price*100)) / 100 // round to 2dp
	qty := int64(rand.Intn(maxQty-minQty+1) + minQty)

	order, err := market.NewLimitOrder(side, uuid.New(), qty, price)
	if err != nil {
		panic(err)
	}
	return order
}

type tally struct {
	matchCount int
	matchQty   int64
}

func (t *tally) OnMatch(result *market.MatchResult) {
	for _, trade := range result.Trades {
		t.matchCount++
		t.matchQty += trade.Volume
		if t.matchCount <= 5 {
			log.Printf("Match: SELL[%s] <=> BUY[%s] @ %.2f Qty %d\n",
				trade.OffererID, trade.BidderID, trade.Price, trade.Volume)
		}
	}
}

func main() {
	engine := market.NewMatchingEngine(market.NewOrderBook())
	t := &tally{}
	engine.Subscribe(t)

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		if _, err := engine.PlaceOrder(randomOrder()); err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)

	log.Printf("Placed %d orders in %v (%.0f orders/sec)\n",
		numOrders, elapsed, float64(numOrders)/elapsed.Seconds())
	log.Printf("Matches: %d, matched qty: %d\n", t.matchCount, t.matchQty)
	log.Printf("Resting: %d bids, %d offers\n", engine.NumBids(), engine.NumOffers())
}
