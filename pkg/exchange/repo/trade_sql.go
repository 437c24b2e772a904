package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (r *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *TradeSQLRepo) Create(ctx context.Context, record *model.TradeRecord) (*model.TradeRecord, error) {
	return record, r.dbWithContext(ctx).Create(record).Error
}

func (r *TradeSQLRepo) BulkCreate(ctx context.Context, records []*model.TradeRecord) ([]*model.TradeRecord, error) {
	return records, r.dbWithContext(ctx).Create(records).Error
}

func (r *TradeSQLRepo) ListByOrderID(ctx context.Context, orderID string) ([]*model.TradeRecord, error) {
	var out []*model.TradeRecord
	err := r.dbWithContext(ctx).
		Where("offerer_order_id = ? OR bidder_order_id = ?", orderID, orderID).
		Order("executed_at asc").
		Find(&out).Error
	return out, err
}
