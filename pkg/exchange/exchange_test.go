package exchange

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclob/matchcore/pkg/exchange/model"
)

type fakeGateway struct {
	mu      sync.Mutex
	reports []*model.OrderReport
}

func (g *fakeGateway) Start(ctx context.Context) error { return nil }

func (g *fakeGateway) OnOrderReport(_ context.Context, report *model.OrderReport) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reports = append(g.reports, report)
}

func (g *fakeGateway) all() []*model.OrderReport {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*model.OrderReport, len(g.reports))
	copy(out, g.reports)
	return out
}

func newTestExchange() (*Exchange, *fakeGateway) {
	gw := &fakeGateway{}
	return NewExchange("ABC", gw, nil), gw
}

func addOrder(clOrdID, account string, typ model.OrderType, side model.OrderSide, price, qty int64) *model.AddOrder {
	return &model.AddOrder{
		ClientOrderID: clOrdID,
		Account:       account,
		Symbol:        "ABC",
		Type:          typ,
		Side:          side,
		Price:         decimal.NewFromInt(price),
		Quantity:      decimal.NewFromInt(qty),
		TransactTime:  time.Now(),
	}
}

func TestExchange_AddOrderResting(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	err := x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100))
	require.NoError(t, err)

	reports := gw.all()
	require.Len(t, reports, 1)
	assert.Equal(t, model.ReportStatusAllResting, reports[0].Status)
	assert.Equal(t, "c1", reports[0].ClientOrderID)
	assert.True(t, reports[0].LeavesQuantity.Equal(decimal.NewFromInt(100)))
	assert.False(t, reports[0].HasMatched)
	assert.NotEmpty(t, reports[0].OrderID)
}

func TestExchange_AddOrderDuplicateClientOrderID(t *testing.T) {
	x, _ := newTestExchange()
	ctx := context.Background()

	require.NoError(t, x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))

	err := x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100))
	assert.ErrorIs(t, err, errDuplicateOrder)
}

func TestExchange_AddOrderMatch(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	require.NoError(t, x.AddOrder(ctx, addOrder("s1", "seller", model.OrderTypeLimit, model.OrderSideSell, 10, 100)))
	require.NoError(t, x.AddOrder(ctx, addOrder("b1", "buyer", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))

	reports := gw.all()
	require.Len(t, reports, 2)
	buy := reports[1]
	assert.Equal(t, model.ReportStatusFilled, buy.Status)
	assert.True(t, buy.HasMatched)
	assert.True(t, buy.FilledQuantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, buy.LeavesQuantity.IsZero())
	assert.True(t, buy.AvgMatchPrice.Equal(decimal.NewFromInt(10)))
}

func TestExchange_AddOrderUnknownSymbol(t *testing.T) {
	x, _ := newTestExchange()

	order := addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)
	order.Symbol = "XYZ"

	assert.ErrorIs(t, x.AddOrder(context.Background(), order), errUnknownSymbol)
}

func TestExchange_CancelOrder(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	require.NoError(t, x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))

	err := x.CancelOrder(ctx, &model.CancelOrder{
		ClientOrderID:     "c2",
		OrigClientOrderID: "c1",
		Account:           "acc1",
		Symbol:            "ABC",
	})
	require.NoError(t, err)

	reports := gw.all()
	require.Len(t, reports, 2)
	assert.Equal(t, model.ReportStatusCancelled, reports[1].Status)
	assert.Equal(t, reports[0].OrderID, reports[1].OrderID)

	// a second cancel finds nothing in the book
	err = x.CancelOrder(ctx, &model.CancelOrder{
		ClientOrderID:     "c3",
		OrigClientOrderID: "c1",
		Account:           "acc1",
		Symbol:            "ABC",
	})
	assert.ErrorIs(t, err, errOrderNotInBook)
}

func TestExchange_CancelOrderUnknownClientOrderID(t *testing.T) {
	x, _ := newTestExchange()

	err := x.CancelOrder(context.Background(), &model.CancelOrder{
		ClientOrderID:     "c2",
		OrigClientOrderID: "missing",
		Symbol:            "ABC",
	})
	assert.ErrorIs(t, err, errClientOrderIDNotFound)
}

func TestExchange_AmendOrder(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	require.NoError(t, x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))

	err := x.AmendOrder(ctx, &model.AmendOrder{
		ClientOrderID:     "c2",
		OrigClientOrderID: "c1",
		Account:           "acc1",
		Symbol:            "ABC",
		NewQuantity:       decimal.NewFromInt(40),
	})
	require.NoError(t, err)

	reports := gw.all()
	require.Len(t, reports, 2)
	assert.Equal(t, model.ReportStatusReplaced, reports[1].Status)
	assert.True(t, reports[1].LeavesQuantity.Equal(decimal.NewFromInt(40)))
}

func TestExchange_PlaceQuote(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	err := x.PlaceQuote(ctx, &model.Quote{
		Account:     "mm1",
		Symbol:      "ABC",
		BidPrice:    decimal.NewFromInt(9),
		BidQuantity: decimal.NewFromInt(50),
		AskPrice:    decimal.NewFromInt(11),
		AskQuantity: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	reports := gw.all()
	require.Len(t, reports, 2)
	assert.Equal(t, model.OrderSideBuy, reports[0].Side)
	assert.Equal(t, model.OrderSideSell, reports[1].Side)
	assert.Equal(t, model.ReportStatusAllResting, reports[0].Status)
	assert.Equal(t, model.ReportStatusAllResting, reports[1].Status)
}

func TestExchange_ReportsHistory(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	require.NoError(t, x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))
	orderID := gw.all()[0].OrderID

	require.NoError(t, x.CancelOrder(ctx, &model.CancelOrder{
		ClientOrderID:     "c2",
		OrigClientOrderID: "c1",
		Account:           "acc1",
		Symbol:            "ABC",
	}))

	history, err := x.Reports(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ReportStatusAllResting, history[0].Status)
	assert.Equal(t, model.ReportStatusCancelled, history[1].Status)
}

func TestExchange_SideIndexBoundedByBook(t *testing.T) {
	x, gw := newTestExchange()
	ctx := context.Background()

	// fully matched orders never enter the index
	require.NoError(t, x.AddOrder(ctx, addOrder("s1", "seller", model.OrderTypeLimit, model.OrderSideSell, 10, 100)))
	require.NoError(t, x.AddOrder(ctx, addOrder("b1", "buyer", model.OrderTypeLimit, model.OrderSideBuy, 10, 100)))

	buyID := gw.all()[1].OrderID
	_, ok := x.orderSides.Load(buyID)
	assert.False(t, ok, "filled order must not be indexed")

	// cancelled orders leave the index
	require.NoError(t, x.AddOrder(ctx, addOrder("c1", "acc1", model.OrderTypeLimit, model.OrderSideBuy, 9, 50)))
	restingID := gw.all()[2].OrderID
	_, ok = x.orderSides.Load(restingID)
	require.True(t, ok, "resting order must be indexed")

	require.NoError(t, x.CancelOrder(ctx, &model.CancelOrder{
		ClientOrderID:     "c2",
		OrigClientOrderID: "c1",
		Account:           "acc1",
		Symbol:            "ABC",
	}))
	_, ok = x.orderSides.Load(restingID)
	assert.False(t, ok, "cancelled order must leave the index")
}

func TestExchange_AddOrderInvalidType(t *testing.T) {
	x, _ := newTestExchange()

	order := addOrder("c1", "acc1", model.OrderType("ICEBERG"), model.OrderSideBuy, 10, 100)
	assert.ErrorIs(t, x.AddOrder(context.Background(), order), errInvalidOrderType)
}
