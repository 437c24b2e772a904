package eventstore

import (
	"context"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

// EventStore keeps the report history and the client-order-id to
// order-id mapping used for duplicate detection and cancel/amend
// resolution.
type EventStore interface {
	AddReport(ctx context.Context, report *model.OrderReport) error
	GetOrderID(ctx context.Context, clientOrderID string) (string, error)
	Reports(ctx context.Context, orderID string) ([]*model.OrderReport, error)
}
