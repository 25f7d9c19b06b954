package desk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LotMatch is a read-only descriptor of one lot's participation in a match
// pass. It references the pre-match lot; consumers must treat it as
// immutable. There is no cross-reference cycle: closed lots live in their
// own list on the queue (spec.md §9).
type LotMatch struct {
	Lot             Lot
	MatchedQuantity Quantity
	RemainingLot    *Lot
	RealizedPnL     Money
	ClosePrice      Price
	CloseTimestamp  time.Time
}

// LotQueue is the per-risk-pair FIFO matcher described in spec.md §4.E. It
// holds open lots in arrival order (the order AddLot was invoked, which in
// turn follows event order) and an append-only list of closed lots for
// auditability.
type LotQueue struct {
	riskPair CurrencyPair
	open     []Lot
	closed   []Lot
}

// NewLotQueue creates an empty queue for riskPair.
func NewLotQueue(riskPair CurrencyPair) *LotQueue {
	return &LotQueue{riskPair: riskPair}
}

// RiskPair returns the pair this queue matches lots for.
func (q *LotQueue) RiskPair() CurrencyPair { return q.riskPair }

// AddLot appends a newly opened lot to the back of the FIFO queue.
func (q *LotQueue) AddLot(lot Lot) error {
	if lot.RiskPair != q.riskPair {
		return &LotInvariantError{Reason: fmt.Sprintf("lot risk pair %s does not match queue risk pair %s", lot.RiskPair, q.riskPair)}
	}
	if !lot.Quantity.IsPositive() {
		return &LotInvariantError{Reason: fmt.Sprintf("cannot add lot %s with non-positive quantity %s", lot.LotID, lot.Quantity)}
	}
	q.open = append(q.open, lot)
	return nil
}

// NetPosition returns the signed net position of all open lots: the sum of
// BUY quantities minus the sum of SELL quantities.
func (q *LotQueue) NetPosition() Quantity {
	var net decimal.Decimal
	for _, lot := range q.open {
		if lot.Side == Buy {
			net = net.Add(lot.Quantity.value)
		} else {
			net = net.Sub(lot.Quantity.value)
		}
	}
	return Quantity{net}
}

// OpenLots returns a copy of the currently open lots, in FIFO order.
func (q *LotQueue) OpenLots() []Lot {
	out := make([]Lot, len(q.open))
	copy(out, q.open)
	return out
}

// ClosedLots returns a copy of every lot ever fully closed by this queue.
func (q *LotQueue) ClosedLots() []Lot {
	out := make([]Lot, len(q.closed))
	copy(out, q.closed)
	return out
}

// Match implements the FIFO matching state machine of spec.md §4.E: walk
// open lots in arrival order, skip same-side lots untouched, and consume
// opposite-side lots (oldest first) up to quantity. Every consulted
// opposite-side lot produces a LotMatch record, whether it closes fully or
// is only partially reduced.
func (q *LotQueue) Match(quantity Quantity, incomingSide Side, closePrice Price, closeTimestamp time.Time) ([]LotMatch, error) {
	if !quantity.IsPositive() {
		return nil, &LotInvariantError{Reason: fmt.Sprintf("match quantity must be > 0, got %s", quantity)}
	}
	opposite := incomingSide.Opposite()
	remaining := quantity

	var matches []LotMatch
	newOpen := make([]Lot, 0, len(q.open))

	for _, lot := range q.open {
		if !remaining.IsPositive() || lot.Side != opposite {
			newOpen = append(newOpen, lot)
			continue
		}

		matchedQty := lot.Quantity.Min(remaining)
		realized, err := lot.ComputeRealizedPnL(matchedQty, closePrice)
		if err != nil {
			return nil, err
		}

		match := LotMatch{
			Lot:             lot,
			MatchedQuantity: matchedQty,
			RealizedPnL:     realized,
			ClosePrice:      closePrice,
			CloseTimestamp:  closeTimestamp,
		}

		if matchedQty.Equal(lot.Quantity) {
			closedLot, err := lot.ReduceQuantity(matchedQty)
			if err != nil {
				return nil, err
			}
			closedLot = closedLot.Close(closeTimestamp, closePrice)
			q.closed = append(q.closed, closedLot)
		} else {
			reduced, err := lot.ReduceQuantity(matchedQty)
			if err != nil {
				return nil, err
			}
			newOpen = append(newOpen, reduced)
			match.RemainingLot = &reduced
		}

		matches = append(matches, match)
		remaining = remaining.Sub(matchedQty)
	}

	q.open = newOpen
	return matches, nil
}
