package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is one execution on the tape. Offerer is the selling
// party, bidder the buying party.
type TradeRecord struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Symbol         string          `gorm:"column:symbol;index" json:"symbol"`
	OffererOrderID string          `gorm:"column:offerer_order_id;index" json:"offerer_order_id"`
	BidderOrderID  string          `gorm:"column:bidder_order_id;index" json:"bidder_order_id"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(20,8)" json:"price"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(20,0)" json:"quantity"`
	ExecutedAt     time.Time       `gorm:"column:executed_at;index" json:"executed_at"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_tape"
}
