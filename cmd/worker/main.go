package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openclob/matchcore/config"
	"github.com/openclob/matchcore/pkg/exchange/repo"
	"github.com/openclob/matchcore/pkg/exchange/worker"
	postgres_wrapper "github.com/openclob/matchcore/pkg/infra/postgres"
	"github.com/openclob/matchcore/pkg/kafkawrapper"
	"github.com/openclob/matchcore/pkg/logging"
)

func main() {
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

	tapeDB := postgres_wrapper.InitPostgresWithBackoff(cfg.TapeDB)
	w := worker.NewWorker(repo.NewRepo(tapeDB), log)

	consumer, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   cfg.Kafka.TradeTopic,
	})
	if err != nil {
		panic(err)
	}
	defer consumer.Close()

	go func() {
		if err := w.StartConsumer(ctx, consumer); err != nil && ctx.Err() == nil {
			fmt.Println("consumer stopped:", err)
			sigs <- syscall.SIGTERM
		}
	}()
	fmt.Println("Tape worker started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")
	cancel()
}
