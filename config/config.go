package config

import (
	"os"

	postgres_wrapper "github.com/openclob/matchcore/pkg/infra/postgres"
	redis_wrapper "github.com/openclob/matchcore/pkg/infra/redis"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServiceName string                           `yaml:"service_name"`
	Symbol      string                           `yaml:"symbol"`
	TapeDB      *postgres_wrapper.PostgresConfig `yaml:"tape_db"`
	Redis       *redis_wrapper.RedisConfig       `yaml:"redis"`
	Kafka       *KafkaConfig                     `yaml:"kafka"`
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	OrderTopic  string   `yaml:"order_topic"`
	ReportTopic string   `yaml:"report_topic"`
	TradeTopic  string   `yaml:"trade_topic"`
	GroupID     string   `yaml:"group_id"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")
	zap.S().Debugf("CONFIG_FILE=%v", filePath)

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
