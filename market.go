package desk

import "fmt"

// MarketRate is a two-sided quote with its midpoint, cached per currency
// pair in [State]. The invariant 0 < bid <= mid <= ask is enforced at
// construction; [NewMarketRate] additionally enforces the event layer's
// strict bid < ask requirement (spec.md §3).
type MarketRate struct {
	Bid Price
	Ask Price
	Mid Price
}

// NewMarketRate validates and constructs a MarketRate. It returns an
// [InvalidEvent] error if the invariant does not hold.
func NewMarketRate(bid, ask, mid Price) (MarketRate, error) {
	if !bid.IsPositive() {
		return MarketRate{}, &InvalidEvent{Reason: "bid must be strictly positive"}
	}
	if !bid.LessThan(ask) {
		return MarketRate{}, &InvalidEvent{Reason: fmt.Sprintf("bid %s must be strictly less than ask %s", bid, ask)}
	}
	if mid.LessThan(bid) || ask.LessThan(mid) {
		return MarketRate{}, &InvalidEvent{Reason: fmt.Sprintf("mid %s must satisfy bid <= mid <= ask (%s, %s)", mid, bid, ask)}
	}
	return MarketRate{Bid: bid, Ask: ask, Mid: mid}, nil
}

func (r MarketRate) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("bid", r.Bid.value)
	w.Append("ask", r.Ask.value)
	w.Append("mid", r.Mid.value)
	return w.MarshalJSON()
}
