// Package exchange is the session layer above the matching engine. It
// accepts decimal-typed client instructions, deduplicates them by client
// order id, drives the engine and pushes order reports back through the
// gateway.
package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openclob/matchcore/pkg/exchange/eventstore"
	"github.com/openclob/matchcore/pkg/exchange/model"
	"github.com/openclob/matchcore/pkg/market"
)

type Exchange struct {
	symbol     string
	engine     *market.MatchingEngine
	gateway    OrderGateway
	eventstore eventstore.EventStore

	// order id -> resting side, for cancel/amend lookups
	orderSides sync.Map
}

func NewExchange(symbol string, gateway OrderGateway, store eventstore.EventStore) *Exchange {
	if store == nil {
		store = eventstore.NewInMemoryEventStore()
	}

	return &Exchange{
		symbol:     symbol,
		engine:     market.NewMatchingEngine(market.NewOrderBook()),
		gateway:    gateway,
		eventstore: store,
	}
}

func (x *Exchange) Start(ctx context.Context) error {
	return x.gateway.Start(ctx)
}

// Subscribe forwards a trade subscriber to the underlying engine, used
// to attach the tape publisher.
func (x *Exchange) Subscribe(s market.TradeSubscriber) {
	x.engine.Subscribe(s)
}

func (x *Exchange) AddOrder(ctx context.Context, addOrder *model.AddOrder) error {
	if addOrder.Symbol != x.symbol {
		return errUnknownSymbol
	}

	existing, err := x.eventstore.GetOrderID(ctx, addOrder.ClientOrderID)
	if err != nil {
		return err
	}
	if existing != "" {
		return errDuplicateOrder
	}

	order, err := x.buildOrder(addOrder)
	if err != nil {
		return err
	}

	result, err := x.engine.PlaceOrder(order)
	if err != nil {
		return err
	}

	x.trackResting(order, result)

	report := x.reportFromResult(addOrder, result)
	if err := x.eventstore.AddReport(ctx, report); err != nil {
		return err
	}
	x.gateway.OnOrderReport(ctx, report)

	return nil
}

func (x *Exchange) CancelOrder(ctx context.Context, cancelOrder *model.CancelOrder) error {
	if cancelOrder.Symbol != x.symbol {
		return errUnknownSymbol
	}

	orderID, side, err := x.resolveOrder(ctx, cancelOrder.OrigClientOrderID)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		return err
	}
	if !x.engine.CancelOrder(id, side) {
		return errOrderNotInBook
	}
	x.orderSides.Delete(orderID)

	report := &model.OrderReport{
		ClientOrderID: cancelOrder.ClientOrderID,
		OrderID:       orderID,
		Account:       cancelOrder.Account,
		Symbol:        cancelOrder.Symbol,
		Side:          sideToModel(side),
		Status:        model.ReportStatusCancelled,
		TransactTime:  time.Now(),
	}
	if err := x.eventstore.AddReport(ctx, report); err != nil {
		return err
	}
	x.gateway.OnOrderReport(ctx, report)

	return nil
}

func (x *Exchange) AmendOrder(ctx context.Context, amendOrder *model.AmendOrder) error {
	if amendOrder.Symbol != x.symbol {
		return errUnknownSymbol
	}

	orderID, side, err := x.resolveOrder(ctx, amendOrder.OrigClientOrderID)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		return err
	}
	found, err := x.engine.AmendOrderVolume(id, side, amendOrder.NewQuantity.IntPart())
	if err != nil {
		return err
	}
	if !found {
		return errOrderNotInBook
	}

	report := &model.OrderReport{
		ClientOrderID:  amendOrder.ClientOrderID,
		OrderID:        orderID,
		Account:        amendOrder.Account,
		Symbol:         amendOrder.Symbol,
		Side:           sideToModel(side),
		Status:         model.ReportStatusReplaced,
		LeavesQuantity: amendOrder.NewQuantity,
		TransactTime:   time.Now(),
	}
	if err := x.eventstore.AddReport(ctx, report); err != nil {
		return err
	}
	x.gateway.OnOrderReport(ctx, report)

	return nil
}

// PlaceQuote places a bid and an offer for the same account in one
// instruction. The bid goes in first.
func (x *Exchange) PlaceQuote(ctx context.Context, quote *model.Quote) error {
	if quote.Symbol != x.symbol {
		return errUnknownSymbol
	}

	traderID := accountID(quote.Account)
	bid, err := market.NewLimitOrder(market.BUY, traderID, quote.BidQuantity.IntPart(), quote.BidPrice.InexactFloat64())
	if err != nil {
		return err
	}
	offer, err := market.NewLimitOrder(market.SELL, traderID, quote.AskQuantity.IntPart(), quote.AskPrice.InexactFloat64())
	if err != nil {
		return err
	}

	bidResult, offerResult, err := x.engine.PlaceQuote(bid, offer)
	if err != nil {
		return err
	}

	x.trackResting(bid, bidResult)
	x.trackResting(offer, offerResult)

	for _, pair := range []struct {
		order  *market.Order
		result *market.MatchResult
		typ    model.OrderType
		side   model.OrderSide
	}{
		{bid, bidResult, model.OrderTypeLimit, model.OrderSideBuy},
		{offer, offerResult, model.OrderTypeLimit, model.OrderSideSell},
	} {
		report := x.reportFromResult(&model.AddOrder{
			Account:      quote.Account,
			Symbol:       quote.Symbol,
			Type:         pair.typ,
			Side:         pair.side,
			TransactTime: quote.TransactTime,
		}, pair.result)
		if err := x.eventstore.AddReport(ctx, report); err != nil {
			return err
		}
		x.gateway.OnOrderReport(ctx, report)
	}

	return nil
}

func (x *Exchange) Reports(ctx context.Context, orderID string) ([]*model.OrderReport, error) {
	return x.eventstore.Reports(ctx, orderID)
}

func (x *Exchange) buildOrder(addOrder *model.AddOrder) (*market.Order, error) {
	var side market.Side
	switch addOrder.Side {
	case model.OrderSideBuy:
		side = market.BUY
	case model.OrderSideSell:
		side = market.SELL
	default:
		return nil, errInvalidOrderSide
	}

	traderID := accountID(addOrder.Account)
	volume := addOrder.Quantity.IntPart()
	price := addOrder.Price.InexactFloat64()

	switch addOrder.Type {
	case model.OrderTypeMarket:
		return market.NewMarketOrder(side, traderID, volume)
	case model.OrderTypeLimit:
		return market.NewLimitOrder(side, traderID, volume, price)
	case model.OrderTypeFOK:
		return market.NewFOKOrder(side, traderID, volume, price)
	case model.OrderTypeIOC:
		return market.NewIOCOrder(side, traderID, volume, price)
	default:
		return nil, errInvalidOrderType
	}
}

func (x *Exchange) reportFromResult(addOrder *model.AddOrder, result *market.MatchResult) *model.OrderReport {
	report := &model.OrderReport{
		ClientOrderID:  addOrder.ClientOrderID,
		OrderID:        result.OrderID.String(),
		Account:        addOrder.Account,
		Symbol:         addOrder.Symbol,
		Side:           addOrder.Side,
		Type:           addOrder.Type,
		Status:         model.ReportStatus(result.Status),
		Note:           result.Note,
		FilledQuantity: decimal.NewFromInt(result.FilledVolume),
		LeavesQuantity: decimal.NewFromInt(result.RemainingVolume),
		HasMatched:     len(result.Trades) > 0,
		TransactTime:   result.Timestamp,
	}
	if result.AvgMatchPrice != market.NoMatches {
		report.AvgMatchPrice = decimal.NewFromFloat(result.AvgMatchPrice)
	}
	return report
}

// trackResting indexes the side of an order that rested in the book.
// Filled and rejected orders are never indexed; cancels remove entries.
func (x *Exchange) trackResting(order *market.Order, result *market.MatchResult) {
	switch result.Status {
	case market.StatusAllResting, market.StatusPartialResting:
		x.orderSides.Store(order.ID.String(), order.Side)
	}
}

func (x *Exchange) resolveOrder(ctx context.Context, origClientOrderID string) (string, market.Side, error) {
	orderID, err := x.eventstore.GetOrderID(ctx, origClientOrderID)
	if err != nil {
		return "", market.BUY, err
	}
	if orderID == "" {
		return "", market.BUY, errClientOrderIDNotFound
	}

	v, ok := x.orderSides.Load(orderID)
	if !ok {
		return "", market.BUY, errOrderNotInBook
	}
	return orderID, v.(market.Side), nil
}

func sideToModel(side market.Side) model.OrderSide {
	if side == market.BUY {
		return model.OrderSideBuy
	}
	return model.OrderSideSell
}

// accountID derives a stable trader id from an account name.
func accountID(account string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(account))
}
