package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type AddOrder struct {
	ClientOrderID string
	Account       string
	Symbol        string
	Type          OrderType
	Side          OrderSide
	Price         decimal.Decimal
	Quantity      decimal.Decimal
	TransactTime  time.Time
}

type CancelOrder struct {
	ClientOrderID     string
	OrigClientOrderID string
	Account           string
	Symbol            string
}

type AmendOrder struct {
	ClientOrderID     string
	OrigClientOrderID string
	Account           string
	Symbol            string
	NewQuantity       decimal.Decimal
}

// Quote is a paired bid and offer placed in one instruction.
type Quote struct {
	Account      string
	Symbol       string
	BidPrice     decimal.Decimal
	BidQuantity  decimal.Decimal
	AskPrice     decimal.Decimal
	AskQuantity  decimal.Decimal
	TransactTime time.Time
}
