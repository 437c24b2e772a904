package eventstore

import (
	"context"
	"sync"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

type InMemoryEventStore struct {
	mu      sync.RWMutex
	reports map[string][]*model.OrderReport // OrderID -> reports
	orderID map[string]string               // ClientOrderID -> OrderID
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		reports: make(map[string][]*model.OrderReport),
		orderID: make(map[string]string),
	}
}

func (s *InMemoryEventStore) AddReport(_ context.Context, report *model.OrderReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.OrderID] = append(s.reports[report.OrderID], report)
	if report.ClientOrderID != "" {
		s.orderID[report.ClientOrderID] = report.OrderID
	}
	return nil
}

func (s *InMemoryEventStore) GetOrderID(_ context.Context, clientOrderID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.orderID[clientOrderID], nil
}

func (s *InMemoryEventStore) Reports(_ context.Context, orderID string) ([]*model.OrderReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.OrderReport, len(s.reports[orderID]))
	copy(out, s.reports[orderID])
	return out, nil
}
