package market

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewOrderRejectsInvalidVolume(t *testing.T) {
	trader := uuid.New()

	if _, err := NewMarketOrder(BUY, trader, 0); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("expected ErrInvalidVolume, got %v", err)
	}
	if _, err := NewLimitOrder(SELL, trader, -5, 10.0); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("expected ErrInvalidVolume, got %v", err)
	}
}

func TestNewOrderRejectsInvalidPrice(t *testing.T) {
	trader := uuid.New()

	if _, err := NewLimitOrder(BUY, trader, 10, 0); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := NewFOKOrder(BUY, trader, 10, -1.0); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := NewIOCOrder(SELL, trader, 10, 0); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestMarketOrderCarriesNoPrice(t *testing.T) {
	order, err := NewMarketOrder(BUY, uuid.New(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if order.Price != NoPrice {
		t.Errorf("expected NoPrice, got %f", order.Price)
	}
	if order.CanRestInBook() {
		t.Error("market order must not rest in book")
	}
	if !order.IsInPriceLimit(1e9) || !order.IsInPriceLimit(0.01) {
		t.Error("market order must accept any price")
	}
}

func TestInverseSide(t *testing.T) {
	buy, _ := NewMarketOrder(BUY, uuid.New(), 1)
	sell, _ := NewMarketOrder(SELL, uuid.New(), 1)

	if buy.InverseSide() != SELL {
		t.Errorf("expected SELL, got %s", buy.InverseSide())
	}
	if sell.InverseSide() != BUY {
		t.Errorf("expected BUY, got %s", sell.InverseSide())
	}
}

func TestIsInPriceLimit(t *testing.T) {
	buy, _ := NewLimitOrder(BUY, uuid.New(), 10, 100.0)
	if !buy.IsInPriceLimit(99.0) || !buy.IsInPriceLimit(100.0) {
		t.Error("buy must accept prices at or below its limit")
	}
	if buy.IsInPriceLimit(100.01) {
		t.Error("buy must reject prices above its limit")
	}

	sell, _ := NewLimitOrder(SELL, uuid.New(), 10, 100.0)
	if !sell.IsInPriceLimit(101.0) || !sell.IsInPriceLimit(100.0) {
		t.Error("sell must accept prices at or above its limit")
	}
	if sell.IsInPriceLimit(99.99) {
		t.Error("sell must reject prices below its limit")
	}
}

func TestPricedVariantsCanRest(t *testing.T) {
	trader := uuid.New()
	limit, _ := NewLimitOrder(BUY, trader, 1, 10)
	fok, _ := NewFOKOrder(BUY, trader, 1, 10)
	ioc, _ := NewIOCOrder(BUY, trader, 1, 10)

	for _, o := range []*Order{limit, fok, ioc} {
		if !o.CanRestInBook() {
			t.Errorf("%s order should be able to rest in book", o.Kind)
		}
	}
}
