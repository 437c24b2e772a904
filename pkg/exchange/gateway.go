package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/openclob/matchcore/pkg/exchange/model"
	"github.com/openclob/matchcore/pkg/kafkawrapper"
	"github.com/openclob/matchcore/pkg/logging"
)

type OrderGateway interface {
	Start(ctx context.Context) error

	// exchange to client
	OnOrderReport(ctx context.Context, report *model.OrderReport)
}

// InstructionHandler receives decoded client instructions. Exchange
// implements it.
type InstructionHandler interface {
	AddOrder(ctx context.Context, addOrder *model.AddOrder) error
	CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error
	AmendOrder(ctx context.Context, amendOrder *model.AmendOrder) error
}

const (
	instructionAdd    = "add"
	instructionCancel = "cancel"
	instructionAmend  = "amend"
)

type instructionEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type KafkaGatewayConfig struct {
	Brokers     []string
	OrderTopic  string
	ReportTopic string
	GroupID     string
}

// KafkaGateway reads instruction envelopes from the order topic and
// publishes order reports to the report topic.
type KafkaGateway struct {
	cfg      KafkaGatewayConfig
	producer *kafkawrapper.Producer
	handler  InstructionHandler
	log      *logging.Logger
}

func NewKafkaGateway(cfg KafkaGatewayConfig, log *logging.Logger) *KafkaGateway {
	return &KafkaGateway{
		cfg:      cfg,
		producer: kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{Brokers: cfg.Brokers}),
		log:      log,
	}
}

func (g *KafkaGateway) SetHandler(h InstructionHandler) {
	g.handler = h
}

func (g *KafkaGateway) Start(ctx context.Context) error {
	if g.handler == nil {
		return fmt.Errorf("gateway handler not set")
	}

	consumer, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers: g.cfg.Brokers,
		GroupID: g.cfg.GroupID,
		Topic:   g.cfg.OrderTopic,
	})
	if err != nil {
		return err
	}
	defer consumer.Close()

	return consumer.Run(ctx, func(ctx context.Context, msgs []kafkawrapper.Message) error {
		for _, m := range msgs {
			if err := g.dispatch(ctx, m.Value); err != nil {
				g.log.Warn(ctx, "dispatch instruction fail", zap.Error(err))
			}
		}
		return nil
	})
}

func (g *KafkaGateway) dispatch(ctx context.Context, raw []byte) error {
	var env instructionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}

	switch env.Type {
	case instructionAdd:
		var addOrder model.AddOrder
		if err := json.Unmarshal(env.Payload, &addOrder); err != nil {
			return err
		}
		return g.handler.AddOrder(ctx, &addOrder)
	case instructionCancel:
		var cancelOrder model.CancelOrder
		if err := json.Unmarshal(env.Payload, &cancelOrder); err != nil {
			return err
		}
		return g.handler.CancelOrder(ctx, &cancelOrder)
	case instructionAmend:
		var amendOrder model.AmendOrder
		if err := json.Unmarshal(env.Payload, &amendOrder); err != nil {
			return err
		}
		return g.handler.AmendOrder(ctx, &amendOrder)
	default:
		return fmt.Errorf("unknown instruction type %q", env.Type)
	}
}

func (g *KafkaGateway) OnOrderReport(ctx context.Context, report *model.OrderReport) {
	err := g.producer.PublishJSON(ctx, g.cfg.ReportTopic, report.OrderID, report, nil)
	if err != nil {
		g.log.Warn(ctx, "publish order report fail", zap.Error(err), zap.String("order_id", report.OrderID))
	}
}
