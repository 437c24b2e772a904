package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/openclob/matchcore/config"
	"github.com/openclob/matchcore/pkg/exchange"
	"github.com/openclob/matchcore/pkg/exchange/eventstore"
	"github.com/openclob/matchcore/pkg/exchange/tape"
	redis_wrapper "github.com/openclob/matchcore/pkg/infra/redis"
	"github.com/openclob/matchcore/pkg/kafkawrapper"
	"github.com/openclob/matchcore/pkg/logging"
)

func main() {
	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	log := logging.NewLogger(logging.INFO)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	var store eventstore.EventStore
	if cfg.Redis != nil {
		redisClient, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			panic(err)
		}
		store = eventstore.NewRedisEventStore(redisClient)
	} else {
		store = eventstore.NewInMemoryEventStore()
	}

	gateway := exchange.NewKafkaGateway(exchange.KafkaGatewayConfig{
		Brokers:     cfg.Kafka.Brokers,
		OrderTopic:  cfg.Kafka.OrderTopic,
		ReportTopic: cfg.Kafka.ReportTopic,
		GroupID:     cfg.Kafka.GroupID,
	}, log)

	x := exchange.NewExchange(cfg.Symbol, gateway, store)
	gateway.SetHandler(x)

	producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	x.Subscribe(tape.NewPublisher(cfg.Symbol, cfg.Kafka.TradeTopic, producer, log))

	go func() {
		if err := x.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error(ctx, "exchange stopped", zap.Error(err))
			sigs <- syscall.SIGTERM
		}
	}()
	fmt.Println("Exchange started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	cancel()
	producer.Close(context.Background())

	fmt.Println("Exited cleanly.")
}
