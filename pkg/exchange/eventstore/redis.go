package eventstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

const (
	orderIDKeyPrefix = "matchcore:clordid:"
	reportKeyPrefix  = "matchcore:reports:"
)

// RedisEventStore shares report history and the client-order-id mapping
// between instances. Mapping entries are written with SetNX so the
// first writer of a client order id wins.
type RedisEventStore struct {
	client *redis.Client
}

func NewRedisEventStore(client *redis.Client) *RedisEventStore {
	return &RedisEventStore{client: client}
}

func (s *RedisEventStore) AddReport(ctx context.Context, report *model.OrderReport) error {
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if err := s.client.RPush(ctx, reportKeyPrefix+report.OrderID, b).Err(); err != nil {
		return err
	}

	if report.ClientOrderID != "" {
		if err := s.client.SetNX(ctx, orderIDKeyPrefix+report.ClientOrderID, report.OrderID, 0).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisEventStore) GetOrderID(ctx context.Context, clientOrderID string) (string, error) {
	v, err := s.client.Get(ctx, orderIDKeyPrefix+clientOrderID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisEventStore) Reports(ctx context.Context, orderID string) ([]*model.OrderReport, error) {
	vals, err := s.client.LRange(ctx, reportKeyPrefix+orderID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*model.OrderReport, 0, len(vals))
	for _, v := range vals {
		var r model.OrderReport
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}
