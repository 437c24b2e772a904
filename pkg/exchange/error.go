package exchange

import "errors"

var (
	errDuplicateOrder        = errors.New("duplicate client order id")
	errClientOrderIDNotFound = errors.New("client order id not found")
	errOrderNotInBook        = errors.New("order not in book")
	errUnknownSymbol         = errors.New("unknown symbol")
	errInvalidOrderType      = errors.New("invalid order type")
	errInvalidOrderSide      = errors.New("invalid order side")
)
