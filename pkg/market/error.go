package market

import "errors"

var (
	ErrInvalidVolume        = errors.New("invalid order volume")
	ErrInvalidPrice         = errors.New("invalid order price")
	ErrOrderNotFound        = errors.New("order not found")
	ErrUnsupportedOrderType = errors.New("unsupported order type")
	ErrCannotRestInBook     = errors.New("order cannot rest in book")
	ErrNoteTooLong          = errors.New("match result note too long")
	ErrAlreadyFinalised     = errors.New("match result already finalised")
	ErrNotFinalised         = errors.New("match result not finalised")
)
