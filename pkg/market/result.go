package market

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusFilled           OrderStatus = "FILLED"
	StatusAllResting       OrderStatus = "ALL_RESTING"
	StatusPartialResting   OrderStatus = "PARTIAL_RESTING"
	StatusAllRejected      OrderStatus = "ALL_REJECTED"
	StatusPartialRejection OrderStatus = "PARTIAL_REJECTION"
)

// NoMatches is the average-price sentinel for a result with an empty trade
// list.
const NoMatches = -1.0

const maxNoteLength = 250

// MatchResult is the immediate outcome of one placement attempt. It is
// immutable once finalised; the trades it carries are copies, not live
// references into the book.
type MatchResult struct {
	OrderID         uuid.UUID
	Side            Side
	Note            string
	FilledVolume    int64
	RemainingVolume int64
	AvgMatchPrice   float64
	Timestamp       time.Time
	Status          OrderStatus
	Trades          []Trade
}

// MatchResultBuilder constructs a MatchResult in two phases: a snapshot of
// the order at submission time, then Finalise after matching has run.
type MatchResultBuilder struct {
	res       *MatchResult
	finalised bool
}

func NewMatchResultBuilder(order *Order) *MatchResultBuilder {
	return &MatchResultBuilder{
		res: &MatchResult{
			OrderID:         order.ID,
			Side:            order.Side,
			FilledVolume:    0,
			RemainingVolume: order.Volume,
			AvgMatchPrice:   NoMatches,
			Timestamp:       time.Now(),
		},
	}
}

// AttachNote sets the free-text diagnostic note. Notes above 250 characters
// are rejected, never truncated.
func (b *MatchResultBuilder) AttachNote(note string) error {
	if len(note) > maxNoteLength {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrNoteTooLong, len(note), maxNoteLength)
	}
	b.res.Note = note
	return nil
}

// Finalise fills in the fields that depend on the matching outcome. It may
// be called at most once.
func (b *MatchResultBuilder) Finalise(incoming *Order, trades []Trade) error {
	if b.finalised {
		return ErrAlreadyFinalised
	}

	b.res.Status = deriveStatus(incoming, len(trades))
	b.res.FilledVolume = b.res.RemainingVolume - incoming.Volume
	b.res.RemainingVolume = incoming.Volume
	b.res.AvgMatchPrice = averageTradePrice(trades)
	b.res.Trades = append([]Trade(nil), trades...)

	b.finalised = true
	return nil
}

// Result returns the finished MatchResult, failing if Finalise has not run.
func (b *MatchResultBuilder) Result() (*MatchResult, error) {
	if !b.finalised {
		return nil, ErrNotFinalised
	}
	return b.res, nil
}

// deriveStatus computes the terminal status from the remaining volume, the
// trade count and the variant's resting capability. Status is never tracked
// imperatively during matching.
func deriveStatus(incoming *Order, tradeCount int) OrderStatus {
	if incoming.Volume == 0 {
		return StatusFilled
	}

	switch incoming.Kind {
	case MARKET, IOC:
		if tradeCount > 0 {
			return StatusPartialRejection
		}
		return StatusAllRejected
	case FOK:
		// FOK is all-or-nothing, a remainder always means full rejection.
		return StatusAllRejected
	default:
		if tradeCount > 0 {
			return StatusPartialResting
		}
		return StatusAllResting
	}
}

// averageTradePrice returns the volume-weighted mean of the trade prices, or
// NoMatches for an empty trade list.
func averageTradePrice(trades []Trade) float64 {
	if len(trades) == 0 {
		return NoMatches
	}

	var notional float64
	var volume int64
	for _, t := range trades {
		notional += t.Price * float64(t.Volume)
		volume += t.Volume
	}
	return notional / float64(volume)
}
