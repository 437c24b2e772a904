package repo

import (
	"context"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

type ITrade interface {
	Create(ctx context.Context, record *model.TradeRecord) (*model.TradeRecord, error)
	BulkCreate(ctx context.Context, records []*model.TradeRecord) ([]*model.TradeRecord, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*model.TradeRecord, error)
}
