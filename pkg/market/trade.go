package market

import "github.com/google/uuid"

// Trade is an immutable record of one matching event. The execution price is
// always the resting order's price, never the incoming order's.
type Trade struct {
	OffererID uuid.UUID
	BidderID  uuid.UUID
	Price     float64
	Volume    int64
}
