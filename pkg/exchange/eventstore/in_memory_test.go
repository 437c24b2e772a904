package eventstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

func TestInMemoryEventStore(t *testing.T) {
	s := NewInMemoryEventStore()
	ctx := context.Background()

	require.NoError(t, s.AddReport(ctx, &model.OrderReport{
		ClientOrderID: "c1",
		OrderID:       "o1",
		Status:        model.ReportStatusAllResting,
	}))
	require.NoError(t, s.AddReport(ctx, &model.OrderReport{
		ClientOrderID: "c2",
		OrderID:       "o1",
		Status:        model.ReportStatusCancelled,
	}))

	orderID, err := s.GetOrderID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "o1", orderID)

	orderID, err = s.GetOrderID(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, orderID)

	reports, err := s.Reports(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, model.ReportStatusAllResting, reports[0].Status)
	assert.Equal(t, model.ReportStatusCancelled, reports[1].Status)
}
