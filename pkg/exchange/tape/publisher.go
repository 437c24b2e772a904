// Package tape streams executions to the trade tape. The publisher sits
// on the engine as a trade subscriber and pushes one record per trade to
// Kafka; the worker on the other end persists them.
package tape

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/openclob/matchcore/pkg/exchange/model"
	"github.com/openclob/matchcore/pkg/kafkawrapper"
	"github.com/openclob/matchcore/pkg/logging"
	"github.com/openclob/matchcore/pkg/market"
)

type Publisher struct {
	symbol   string
	topic    string
	producer *kafkawrapper.Producer
	log      *logging.Logger
}

func NewPublisher(symbol, topic string, producer *kafkawrapper.Producer, log *logging.Logger) *Publisher {
	return &Publisher{
		symbol:   symbol,
		topic:    topic,
		producer: producer,
		log:      log,
	}
}

// OnMatch implements market.TradeSubscriber. Records are keyed by symbol
// so the tape stays ordered per instrument.
func (p *Publisher) OnMatch(result *market.MatchResult) {
	ctx := context.Background()
	for _, trade := range result.Trades {
		record := recordFromTrade(p.symbol, trade, result.Timestamp)
		if err := p.producer.PublishJSON(ctx, p.topic, p.symbol, record, nil); err != nil {
			p.log.Warn(ctx, "publish trade record fail", zap.Error(err))
		}
	}
}

func recordFromTrade(symbol string, trade market.Trade, executedAt time.Time) *model.TradeRecord {
	return &model.TradeRecord{
		Symbol:         symbol,
		OffererOrderID: trade.OffererID.String(),
		BidderOrderID:  trade.BidderID.String(),
		Price:          decimal.NewFromFloat(trade.Price),
		Quantity:       decimal.NewFromInt(trade.Volume),
		ExecutedAt:     executedAt,
	}
}
