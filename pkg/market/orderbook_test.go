package market

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func mustLimit(t *testing.T, side Side, volume int64, price float64) *Order {
	t.Helper()
	order, err := NewLimitOrder(side, uuid.New(), volume, price)
	if err != nil {
		t.Fatal(err)
	}
	return order
}

func mustInsert(t *testing.T, book *OrderBook, order *Order) {
	t.Helper()
	if err := book.InsertRestingOrder(order); err != nil {
		t.Fatal(err)
	}
}

func TestBestOrderOnEmptyBook(t *testing.T) {
	book := NewOrderBook()

	if book.BestBid() != nil || book.BestOffer() != nil {
		t.Error("empty book must have no best bid/offer")
	}
	if !book.IsEmpty() {
		t.Error("expected empty book")
	}
}

func TestBestBidIsHighestPrice(t *testing.T) {
	book := NewOrderBook()
	mustInsert(t, book, mustLimit(t, BUY, 10, 99.0))
	high := mustLimit(t, BUY, 10, 101.0)
	mustInsert(t, book, high)
	mustInsert(t, book, mustLimit(t, BUY, 10, 100.0))

	if best := book.BestBid(); best == nil || best.ID != high.ID {
		t.Errorf("expected bid at 101.0 on top, got %+v", best)
	}
}

func TestBestOfferIsLowestPrice(t *testing.T) {
	book := NewOrderBook()
	mustInsert(t, book, mustLimit(t, SELL, 10, 101.0))
	low := mustLimit(t, SELL, 10, 99.0)
	mustInsert(t, book, low)
	mustInsert(t, book, mustLimit(t, SELL, 10, 100.0))

	if best := book.BestOffer(); best == nil || best.ID != low.ID {
		t.Errorf("expected offer at 99.0 on top, got %+v", best)
	}
}

func TestTimePriorityWithinLevel(t *testing.T) {
	book := NewOrderBook()
	first := mustLimit(t, SELL, 5, 100.0)
	second := mustLimit(t, SELL, 5, 100.0)
	mustInsert(t, book, first)
	mustInsert(t, book, second)

	if best := book.BestOffer(); best.ID != first.ID {
		t.Errorf("expected earlier order on top, got %v", best.ID)
	}
}

func TestInsertRejectsMarketOrder(t *testing.T) {
	book := NewOrderBook()
	order, _ := NewMarketOrder(BUY, uuid.New(), 10)

	if err := book.InsertRestingOrder(order); !errors.Is(err, ErrCannotRestInBook) {
		t.Fatalf("expected ErrCannotRestInBook, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	book := NewOrderBook()
	keep := mustLimit(t, BUY, 10, 100.0)
	gone := mustLimit(t, BUY, 10, 100.0)
	mustInsert(t, book, keep)
	mustInsert(t, book, gone)

	if !book.CancelOrder(gone.ID, BUY) {
		t.Fatal("expected cancel to find the order")
	}
	if book.CancelOrder(gone.ID, BUY) {
		t.Fatal("second cancel must report not found")
	}
	if book.NumBids() != 1 {
		t.Errorf("expected 1 resting bid, got %d", book.NumBids())
	}
	if best := book.BestBid(); best.ID != keep.ID {
		t.Errorf("wrong order left on top: %v", best.ID)
	}
}

func TestCancelLastOrderOfLevel(t *testing.T) {
	book := NewOrderBook()
	only := mustLimit(t, SELL, 10, 100.0)
	behind := mustLimit(t, SELL, 10, 101.0)
	mustInsert(t, book, only)
	mustInsert(t, book, behind)

	if !book.CancelOrder(only.ID, SELL) {
		t.Fatal("expected cancel to succeed")
	}
	if best := book.BestOffer(); best == nil || best.ID != behind.ID {
		t.Errorf("expected next level to surface, got %+v", best)
	}
}

func TestAmendOrderVolume(t *testing.T) {
	book := NewOrderBook()
	first := mustLimit(t, BUY, 10, 100.0)
	second := mustLimit(t, BUY, 10, 100.0)
	mustInsert(t, book, first)
	mustInsert(t, book, second)

	found, err := book.AmendOrderVolume(first.ID, BUY, 3)
	if err != nil || !found {
		t.Fatalf("expected amend to succeed, found=%v err=%v", found, err)
	}
	// Amendment must not disturb time priority.
	if best := book.BestBid(); best.ID != first.ID || best.Volume != 3 {
		t.Errorf("expected amended order still on top, got %+v", best)
	}
}

func TestAmendOrderVolumeRejectsNonPositive(t *testing.T) {
	book := NewOrderBook()
	order := mustLimit(t, BUY, 10, 100.0)
	mustInsert(t, book, order)

	if _, err := book.AmendOrderVolume(order.ID, BUY, 0); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("expected ErrInvalidVolume, got %v", err)
	}
	if best := book.BestBid(); best.Volume != 10 {
		t.Errorf("failed amend must not be partially applied, got volume %d", best.Volume)
	}
}

func TestAmendOrderVolumeNotFound(t *testing.T) {
	book := NewOrderBook()

	found, err := book.AmendOrderVolume(uuid.New(), BUY, 5)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected not found")
	}
}

func TestTradeTopShrinksRestingOrder(t *testing.T) {
	book := NewOrderBook()
	resting := mustLimit(t, SELL, 10, 100.0)
	mustInsert(t, book, resting)

	incoming := mustLimit(t, BUY, 4, 101.0)
	trade, err := book.TradeTop(incoming, 4)
	if err != nil {
		t.Fatal(err)
	}

	if trade.Price != 100.0 || trade.Volume != 4 {
		t.Errorf("unexpected trade %+v", trade)
	}
	if trade.OffererID != resting.ID || trade.BidderID != incoming.ID {
		t.Errorf("wrong trade participants: %+v", trade)
	}
	if best := book.BestOffer(); best.Volume != 6 {
		t.Errorf("expected resting volume 6, got %d", best.Volume)
	}
}

func TestTradeTopRemovesFullyConsumedOrder(t *testing.T) {
	book := NewOrderBook()
	mustInsert(t, book, mustLimit(t, SELL, 10, 100.0))

	incoming := mustLimit(t, BUY, 10, 100.0)
	if _, err := book.TradeTop(incoming, 10); err != nil {
		t.Fatal(err)
	}
	if !book.IsEmpty() {
		t.Error("expected empty book after full consumption")
	}
}

func TestTradeTopOnEmptySide(t *testing.T) {
	book := NewOrderBook()
	incoming := mustLimit(t, BUY, 10, 100.0)

	if _, err := book.TradeTop(incoming, 10); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestTradeTopRecordsSellSideParticipants(t *testing.T) {
	book := NewOrderBook()
	restingBid := mustLimit(t, BUY, 10, 100.0)
	mustInsert(t, book, restingBid)

	incoming := mustLimit(t, SELL, 10, 100.0)
	trade, err := book.TradeTop(incoming, 10)
	if err != nil {
		t.Fatal(err)
	}
	if trade.OffererID != incoming.ID || trade.BidderID != restingBid.ID {
		t.Errorf("wrong trade participants: %+v", trade)
	}
}

func TestNumBidsNumOffers(t *testing.T) {
	book := NewOrderBook()
	mustInsert(t, book, mustLimit(t, BUY, 10, 100.0))
	mustInsert(t, book, mustLimit(t, BUY, 10, 99.0))
	mustInsert(t, book, mustLimit(t, SELL, 10, 101.0))

	if book.NumBids() != 2 || book.NumOffers() != 1 {
		t.Errorf("expected 2 bids / 1 offer, got %d / %d", book.NumBids(), book.NumOffers())
	}
}

func TestScanVisitsPriorityOrder(t *testing.T) {
	book := NewOrderBook()
	third := mustLimit(t, SELL, 10, 102.0)
	first := mustLimit(t, SELL, 10, 100.0)
	second := mustLimit(t, SELL, 10, 100.0)
	mustInsert(t, book, third)
	mustInsert(t, book, first)
	mustInsert(t, book, second)

	var seen []uuid.UUID
	book.scan(SELL, func(o *Order) bool {
		seen = append(seen, o.ID)
		return true
	})

	want := []uuid.UUID{first.ID, second.ID, third.ID}
	if len(seen) != len(want) {
		t.Fatalf("expected %d orders, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], seen[i])
		}
	}
}
