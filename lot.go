package desk

import (
	"fmt"
	"time"
)

// Lot is a single, immutable position entry opened by one leg of one trade,
// the unit of match-and-close bookkeeping for the risk-pair lot tracker
// (spec.md §3). Mutation is always expressed by producing a new Lot value;
// there is no in-place edit.
type Lot struct {
	LotID               string
	RiskPair            CurrencyPair
	Side                Side
	Quantity            Quantity
	OriginalQuantity    Quantity
	TradePrice          Price
	OpenTimestamp       time.Time
	OriginatingTradeID  string
	DecompositionPath   string
	OpenMid             Price
	CloseTimestamp      *time.Time
	CloseMid            *Price
}

// NewLot constructs an open lot, validating the invariants from spec.md §3:
// risk_pair must be direct, 0 < original_quantity, and the opening quantity
// must equal original_quantity (a lot starts fully open).
func NewLot(lotID string, riskPair CurrencyPair, side Side, quantity Quantity, tradePrice Price, openTimestamp time.Time, originatingTradeID, decompositionPath string, openMid Price, reportingCurrency Currency) (Lot, error) {
	if !riskPair.IsDirect(reportingCurrency) {
		return Lot{}, &LotInvariantError{Reason: fmt.Sprintf("risk pair %s is not direct against reporting currency %s", riskPair, reportingCurrency)}
	}
	if !quantity.IsPositive() {
		return Lot{}, &LotInvariantError{Reason: fmt.Sprintf("original_quantity must be > 0, got %s", quantity)}
	}
	return Lot{
		LotID:              lotID,
		RiskPair:           riskPair,
		Side:               side,
		Quantity:           quantity,
		OriginalQuantity:   quantity,
		TradePrice:         tradePrice,
		OpenTimestamp:      openTimestamp,
		OriginatingTradeID: originatingTradeID,
		DecompositionPath:  decompositionPath,
		OpenMid:            openMid,
	}, nil
}

// IsClosed reports whether the lot's quantity has been fully matched away.
func (l Lot) IsClosed() bool { return l.Quantity.IsZero() }

// ReduceQuantity returns a new lot with quantity reduced by delta, which
// must satisfy 0 < delta <= quantity.
func (l Lot) ReduceQuantity(delta Quantity) (Lot, error) {
	if !delta.IsPositive() {
		return Lot{}, &LotInvariantError{Reason: fmt.Sprintf("reduction quantity must be > 0, got %s", delta)}
	}
	if delta.GreaterThan(l.Quantity) {
		return Lot{}, &LotInvariantError{Reason: fmt.Sprintf("cannot reduce lot %s by %s: only %s open", l.LotID, delta, l.Quantity)}
	}
	next := l
	next.Quantity = l.Quantity.Sub(delta)
	return next, nil
}

// Close returns a new lot with close metadata populated. It is always
// called together with a reduction to zero quantity; the caller (the
// LotQueue match loop) is responsible for sequencing the two.
func (l Lot) Close(ts time.Time, closeMid Price) Lot {
	next := l
	next.CloseTimestamp = &ts
	next.CloseMid = &closeMid
	return next
}

// ComputeUnrealizedPnL returns the mark-to-market P&L of a still-open lot
// at currentMid; it is always zero for a closed lot.
func (l Lot) ComputeUnrealizedPnL(currentMid Price) Money {
	cur := l.RiskPair.Quote
	if l.IsClosed() {
		return Cash(0, cur)
	}
	diff := currentMid.Sub(l.TradePrice)
	pnl := diff.value.Mul(l.Quantity.value).Mul(decimalFromInt64(l.Side.Dir()))
	return Cash(pnl, cur)
}

// ComputeRealizedPnL returns the P&L locked in by closing qtyClosed units of
// the lot at closePrice. 0 < qtyClosed <= original_quantity is required.
func (l Lot) ComputeRealizedPnL(qtyClosed Quantity, closePrice Price) (Money, error) {
	if !qtyClosed.IsPositive() || qtyClosed.GreaterThan(l.OriginalQuantity) {
		return Money{}, &LotInvariantError{Reason: fmt.Sprintf("qty_closed must satisfy 0 < qty <= %s, got %s", l.OriginalQuantity, qtyClosed)}
	}
	cur := l.RiskPair.Quote
	diff := closePrice.Sub(l.TradePrice)
	pnl := diff.value.Mul(qtyClosed.value).Mul(decimalFromInt64(l.Side.Dir()))
	return Cash(pnl, cur), nil
}
