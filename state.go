package desk

import (
	"github.com/shopspring/decimal"
)

// State is an immutable snapshot of the desk's accounting state. Every
// state-mutating operation returns a new State; the receiver is left
// untouched, so callers may hold on to prior snapshots for time-travel
// debugging and reproducibility (spec.md §3).
//
// The LotManager is the one exception to immutability: per DESIGN.md it is
// a single mutable instance shared across snapshots, mutated only from the
// single-threaded Processor loop.
type State struct {
	cashBalances      map[Currency]decimal.Decimal
	positions         map[CurrencyPair]decimal.Decimal
	marketRates       map[CurrencyPair]MarketRate
	ReportingCurrency Currency
	LastTimestamp     string // ISO-8601, empty until the first event is handled.
	EventCount        int64
	LotManager        *LotManager // nil when lot tracking is disabled.
}

// NewState creates the initial snapshot for a run.
func NewState(reportingCurrency Currency) State {
	return State{
		cashBalances:      make(map[Currency]decimal.Decimal),
		positions:         make(map[CurrencyPair]decimal.Decimal),
		marketRates:       make(map[CurrencyPair]MarketRate),
		ReportingCurrency: reportingCurrency,
	}
}

func cloneCash(m map[Currency]decimal.Decimal) map[Currency]decimal.Decimal {
	out := make(map[Currency]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePositions(m map[CurrencyPair]decimal.Decimal) map[CurrencyPair]decimal.Decimal {
	out := make(map[CurrencyPair]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneRates(m map[CurrencyPair]MarketRate) map[CurrencyPair]MarketRate {
	out := make(map[CurrencyPair]MarketRate, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// GetCashBalance returns the balance for ccy, or zero if absent.
func (s State) GetCashBalance(ccy Currency) decimal.Decimal {
	if v, ok := s.cashBalances[ccy]; ok {
		return v
	}
	return decimal.Zero
}

// GetPosition returns the signed base-notional position for pair, or zero
// if absent. Positive means the desk is long the base currency.
func (s State) GetPosition(pair CurrencyPair) decimal.Decimal {
	if v, ok := s.positions[pair]; ok {
		return v
	}
	return decimal.Zero
}

// GetMarketRate returns the most recently cached rate for pair, if any.
func (s State) GetMarketRate(pair CurrencyPair) (MarketRate, bool) {
	r, ok := s.marketRates[pair]
	return r, ok
}

// marketMids returns the cached mid price of every known pair, for valuing
// open lots (spec.md §4.F).
func (s State) marketMids() map[CurrencyPair]Price {
	mids := make(map[CurrencyPair]Price, len(s.marketRates))
	for pair, rate := range s.marketRates {
		mids[pair] = rate.Mid
	}
	return mids
}

// UpdateCash returns a successor state with ccy's balance shifted by delta.
func (s State) UpdateCash(ccy Currency, delta decimal.Decimal) State {
	next := s
	next.cashBalances = cloneCash(s.cashBalances)
	next.cashBalances[ccy] = s.GetCashBalance(ccy).Add(delta)
	return next
}

// UpdatePosition returns a successor state with pair's position shifted by
// delta.
func (s State) UpdatePosition(pair CurrencyPair, delta decimal.Decimal) State {
	next := s
	next.positions = clonePositions(s.positions)
	next.positions[pair] = s.GetPosition(pair).Add(delta)
	return next
}

// UpdateMarketRate returns a successor state with pair's cached rate
// overwritten.
func (s State) UpdateMarketRate(pair CurrencyPair, rate MarketRate) State {
	next := s
	next.marketRates = cloneRates(s.marketRates)
	next.marketRates[pair] = rate
	return next
}

// UpdateConfig applies a known configuration key and silently ignores
// unknown ones, per spec.md §4.B and the open question recorded in
// DESIGN.md: this is intentional, not a bug. Changing reporting_currency
// does not touch existing lots, cached rates, or the risk pairs the
// LotManager was configured with.
func (s State) UpdateConfig(key, value string) State {
	next := s
	switch key {
	case "reporting_currency":
		next.ReportingCurrency = Currency(value)
	}
	return next
}

// IncrementEventCount returns a successor state with the counter bumped and
// the last-handled timestamp recorded. It must be called exactly once per
// handled event, even when the handler would otherwise leave state
// untouched (spec.md §4.H).
func (s State) IncrementEventCount(isoTimestamp string) State {
	next := s
	next.EventCount = s.EventCount + 1
	next.LastTimestamp = isoTimestamp
	return next
}

// ComputeExposures implements spec.md §4.B: for each non-zero position in
// pair BASE/QUOTE, add +position to BASE; if a market rate for the pair is
// known, add -position*mid to QUOTE. Pairs without a cached rate
// contribute only to their base currency.
func (s State) ComputeExposures() map[Currency]decimal.Decimal {
	exposures := make(map[Currency]decimal.Decimal)
	for pair, position := range s.positions {
		if position.IsZero() {
			continue
		}
		exposures[pair.Base] = exposures[pair.Base].Add(position)
		if rate, ok := s.marketRates[pair]; ok {
			exposures[pair.Quote] = exposures[pair.Quote].Sub(position.Mul(rate.Mid.value))
		}
	}
	return exposures
}

// ToDict returns a stable, JSON-serializable view of the snapshot, matching
// the final-state document described in spec.md §4.J.
func (s State) ToDict() map[string]any {
	cash := make(map[string]decimal.Decimal, len(s.cashBalances))
	for k, v := range s.cashBalances {
		cash[k.String()] = v
	}
	positions := make(map[string]decimal.Decimal, len(s.positions))
	for k, v := range s.positions {
		positions[k.String()] = v
	}
	rates := make(map[string]MarketRate, len(s.marketRates))
	for k, v := range s.marketRates {
		rates[k.String()] = v
	}
	exposuresDecimal := s.ComputeExposures()
	exposures := make(map[string]decimal.Decimal, len(exposuresDecimal))
	for k, v := range exposuresDecimal {
		exposures[k.String()] = v
	}

	out := map[string]any{
		"cash_balances":      cash,
		"positions":          positions,
		"market_rates":       rates,
		"exposures":          exposures,
		"reporting_currency": s.ReportingCurrency.String(),
		"last_timestamp":     s.LastTimestamp,
		"event_count":        s.EventCount,
	}
	if s.LotManager != nil {
		out["lot_tracking"] = s.LotManager.Summary(s.marketMids())
	}
	return out
}
