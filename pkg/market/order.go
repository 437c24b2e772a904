package market

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Side string

const (
	BUY  Side = "BUY"
	SELL Side = "SELL"
)

type OrderKind string

const (
	MARKET OrderKind = "MARKET"
	LIMIT  OrderKind = "LIMIT"
	FOK    OrderKind = "FOK"
	IOC    OrderKind = "IOC"
)

// NoPrice marks an order that carries no limit price. It cannot be set
// through a constructor under normal terms.
const NoPrice = -1.0

// Order is a buy or sell order for a single instrument. The variant set is
// closed: MARKET, LIMIT, FOK and IOC. Volume only decreases after creation
// and only through the matching process.
type Order struct {
	ID        uuid.UUID
	TraderID  uuid.UUID
	Side      Side
	Kind      OrderKind
	Price     float64
	Volume    int64
	Timestamp time.Time
}

func NewMarketOrder(side Side, traderID uuid.UUID, volume int64) (*Order, error) {
	return newOrder(MARKET, side, traderID, volume, NoPrice)
}

func NewLimitOrder(side Side, traderID uuid.UUID, volume int64, price float64) (*Order, error) {
	return newOrder(LIMIT, side, traderID, volume, price)
}

func NewFOKOrder(side Side, traderID uuid.UUID, volume int64, price float64) (*Order, error) {
	return newOrder(FOK, side, traderID, volume, price)
}

func NewIOCOrder(side Side, traderID uuid.UUID, volume int64, price float64) (*Order, error) {
	return newOrder(IOC, side, traderID, volume, price)
}

func newOrder(kind OrderKind, side Side, traderID uuid.UUID, volume int64, price float64) (*Order, error) {
	if err := validateVolume(volume); err != nil {
		return nil, err
	}
	if kind != MARKET {
		if err := validatePrice(price); err != nil {
			return nil, err
		}
	}

	return &Order{
		ID:        uuid.New(),
		TraderID:  traderID,
		Side:      side,
		Kind:      kind,
		Price:     price,
		Volume:    volume,
		Timestamp: time.Now(),
	}, nil
}

// InverseSide returns the side the order should be matched against.
func (o *Order) InverseSide() Side {
	if o.Side == BUY {
		return SELL
	}
	return BUY
}

// CanRestInBook reports whether the order may be stored in the order book
// awaiting a counterparty. Market orders are transient and never rest.
func (o *Order) CanRestInBook() bool {
	return o.Kind != MARKET
}

// IsInPriceLimit reports whether a candidate counter price is acceptable to
// this order. A market order accepts any price; a priced buy accepts prices
// at or below its limit, a priced sell prices at or above.
func (o *Order) IsInPriceLimit(price float64) bool {
	if o.Kind == MARKET {
		return true
	}
	if o.Side == BUY {
		return o.Price >= price
	}
	return o.Price <= price
}

func validateVolume(volume int64) error {
	if volume <= 0 {
		return fmt.Errorf("%w: %d, volume must be greater than 0", ErrInvalidVolume, volume)
	}
	return nil
}

func validatePrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("%w: %.2f, price must be greater than 0", ErrInvalidPrice, price)
	}
	return nil
}
