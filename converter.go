package desk

import "github.com/shopspring/decimal"

// Converter performs FX conversions against a fixed set of cached market
// rates, implementing spec.md §4.C. It is constructed fresh from a State
// snapshot wherever a handler needs to convert between currencies, so it
// never observes a rate update made by the event currently being handled.
type Converter struct {
	rates map[CurrencyPair]MarketRate
}

// NewConverter builds a Converter over the rates cached in s.
func NewConverter(s State) *Converter {
	return &Converter{rates: s.marketRates}
}

// Convert converts amount from currency `from` to currency `to`.
//
//   - If from == to, amount is returned unchanged.
//   - If a from/to rate is cached, price is mid when useMid, else bid for a
//     positive amount and ask for a negative one; the result is amount*price.
//   - Else if a to/from rate is cached, price is mid when useMid, else ask
//     for a positive amount and bid for a negative one; the result is
//     amount/price (division by a zero price is a ConversionError).
//   - Otherwise, ConversionError.
//
// Using the bid for a positive direct-pair conversion models selling base
// to receive quote, the realistic desk execution the spec calls for.
func (c *Converter) Convert(amount decimal.Decimal, from, to Currency, useMid bool) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	if rate, ok := c.rates[CurrencyPair{Base: from, Quote: to}]; ok {
		price := rate.Bid
		switch {
		case useMid:
			price = rate.Mid
		case amount.IsNegative():
			price = rate.Ask
		}
		return amount.Mul(price.value), nil
	}
	if rate, ok := c.rates[CurrencyPair{Base: to, Quote: from}]; ok {
		price := rate.Ask
		switch {
		case useMid:
			price = rate.Mid
		case amount.IsNegative():
			price = rate.Bid
		}
		if price.IsZero() {
			return decimal.Decimal{}, &ConversionError{From: from, To: to, Reason: "inverse price is zero"}
		}
		return amount.Div(price.value), nil
	}
	return decimal.Decimal{}, &ConversionError{From: from, To: to, Reason: "no cached rate for either direction"}
}

// ConvertToReporting converts amount (denominated in ccy) into the desk's
// reporting currency using mid rates, returning zero and the error
// unconsumed when no rate is available so a caller may choose to skip the
// currency (spec.md §9's clock-tick equity aggregation policy).
func (c *Converter) ConvertToReporting(amount decimal.Decimal, ccy, reportingCurrency Currency) (decimal.Decimal, error) {
	return c.Convert(amount, ccy, reportingCurrency, true)
}

// GetRate returns the mid-rate price of one unit of `from` expressed in
// `to`: 1 for equal currencies, the cached mid for a direct pair, 1/mid for
// the inverse, or a ConversionError.
func (c *Converter) GetRate(from, to Currency) (Price, error) {
	if from == to {
		return Px(1), nil
	}
	if rate, ok := c.rates[CurrencyPair{Base: from, Quote: to}]; ok {
		return rate.Mid, nil
	}
	if rate, ok := c.rates[CurrencyPair{Base: to, Quote: from}]; ok {
		return rate.Mid.Inverse()
	}
	return Price{}, &ConversionError{From: from, To: to, Reason: "no cached rate for either direction"}
}
