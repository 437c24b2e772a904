// Package worker drains the trade topic and writes the tape to postgres
// in batches.
package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/openclob/matchcore/pkg/exchange/model"
	"github.com/openclob/matchcore/pkg/exchange/repo"
	"github.com/openclob/matchcore/pkg/kafkawrapper"
	"github.com/openclob/matchcore/pkg/logging"
)

type Worker struct {
	trades repo.ITrade
	log    *logging.Logger
}

func NewWorker(r repo.IRepo, log *logging.Logger) *Worker {
	return &Worker{
		trades: r.Trade(),
		log:    log,
	}
}

func (w *Worker) StartConsumer(ctx context.Context, consumer *kafkawrapper.ConsumerGroup) error {
	return consumer.Run(ctx, w.handleBatch)
}

func (w *Worker) handleBatch(ctx context.Context, msgs []kafkawrapper.Message) error {
	records := make([]*model.TradeRecord, 0, len(msgs))
	for _, m := range msgs {
		var record model.TradeRecord
		if err := json.Unmarshal(m.Value, &record); err != nil {
			w.log.Warn(ctx, "unmarshal trade record fail", zap.Error(err))
			continue
		}
		records = append(records, &record)
	}
	if len(records) == 0 {
		return nil
	}

	_, err := w.trades.BulkCreate(ctx, records)
	return err
}
