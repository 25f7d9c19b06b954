package desk

import (
	"fmt"
	"time"
)

// Leg is one direct-pair slice of a (possibly cross) client trade, produced
// by DecomposeTrade (spec.md §4.G).
type Leg struct {
	RiskPair          CurrencyPair
	Side              Side // desk side.
	Quantity          Quantity
	TradePrice        Price
	DecompositionPath string
}

// DecomposeTrade splits a client trade into one or two direct-pair legs
// against reportingCurrency. A direct trade yields one leg; a cross yields
// two, mirroring the pair of hedge trades a desk would physically execute
// to replicate the cross.
func DecomposeTrade(tradePair CurrencyPair, clientSide Side, quantity Quantity, executionPrice Price, reportingCurrency Currency, converter *Converter) ([]Leg, error) {
	deskSide := clientSide.Opposite()

	if tradePair.Quote == reportingCurrency {
		return []Leg{{
			RiskPair:          tradePair,
			Side:              deskSide,
			Quantity:          quantity,
			TradePrice:        executionPrice,
			DecompositionPath: tradePair.String(),
		}}, nil
	}

	base, quote := tradePair.Base, tradePair.Quote

	basePair := CurrencyPair{Base: base, Quote: reportingCurrency}
	baseRate, err := converter.GetRate(base, reportingCurrency)
	if err != nil {
		return nil, &DecompositionError{MissingPair: basePair}
	}
	baseLegSide := deskSide
	leg1 := Leg{
		RiskPair:          basePair,
		Side:              baseLegSide,
		Quantity:          quantity,
		TradePrice:        baseRate,
		DecompositionPath: fmt.Sprintf("%s->%s", tradePair, basePair),
	}

	quotePair := CurrencyPair{Base: quote, Quote: reportingCurrency}
	quoteRate, err := converter.GetRate(quote, reportingCurrency)
	if err != nil {
		return nil, &DecompositionError{MissingPair: quotePair}
	}
	quoteQuantity := Qty(quantity.value.Mul(executionPrice.value))
	leg2 := Leg{
		RiskPair:          quotePair,
		Side:              baseLegSide.Opposite(),
		Quantity:          quoteQuantity,
		TradePrice:        quoteRate,
		DecompositionPath: fmt.Sprintf("%s->%s", tradePair, quotePair),
	}

	return []Leg{leg1, leg2}, nil
}

// legsToLots builds a Lot per leg, keyed "{tradeID}_{risk_pair}". Every leg's
// risk pair must have a cached open mid in openMids.
func legsToLots(legs []Leg, tradeID string, timestamp time.Time, openMids map[CurrencyPair]Price, reportingCurrency Currency) ([]Lot, error) {
	lots := make([]Lot, 0, len(legs))
	for _, leg := range legs {
		mid, ok := openMids[leg.RiskPair]
		if !ok {
			return nil, &DecompositionError{MissingPair: leg.RiskPair}
		}
		lotID := fmt.Sprintf("%s_%s", tradeID, leg.RiskPair)
		lot, err := NewLot(lotID, leg.RiskPair, leg.Side, leg.Quantity, leg.TradePrice, timestamp, tradeID, leg.DecompositionPath, mid, reportingCurrency)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, nil
}
