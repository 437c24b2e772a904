package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeFOK    OrderType = "FOK"
	OrderTypeIOC    OrderType = "IOC"
)

type ReportStatus string

const (
	ReportStatusFilled           ReportStatus = "FILLED"
	ReportStatusAllResting       ReportStatus = "ALL_RESTING"
	ReportStatusPartialResting   ReportStatus = "PARTIAL_RESTING"
	ReportStatusAllRejected      ReportStatus = "ALL_REJECTED"
	ReportStatusPartialRejection ReportStatus = "PARTIAL_REJECTION"
	ReportStatusCancelled        ReportStatus = "CANCELLED"
	ReportStatusReplaced         ReportStatus = "REPLACED"
)

// OrderReport is pushed back to the gateway after every accepted
// instruction: one per placed order, cancel and amend.
type OrderReport struct {
	ClientOrderID   string
	OrderID         string
	Account         string
	Symbol          string
	Side            OrderSide
	Type            OrderType
	Status          ReportStatus
	Note            string
	FilledQuantity  decimal.Decimal
	LeavesQuantity  decimal.Decimal
	AvgMatchPrice   decimal.Decimal
	HasMatched      bool
	TransactTime    time.Time
}
