package desk

import (
	"fmt"
	"time"
)

// LotConfig is the static risk-pair lot-tracking configuration derived from
// the run's configuration file (spec.md §6's lot_tracking section).
type LotConfig struct {
	Enabled           bool
	MatchingRule      string // only "FIFO" is implemented.
	RiskPairs         []CurrencyPair
	TradePairs        []CurrencyPair
	HedgePairs        []CurrencyPair
	ReportingCurrency Currency
}

func (c LotConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MatchingRule != "" && c.MatchingRule != "FIFO" {
		return &LotInvariantError{Reason: fmt.Sprintf("unsupported matching rule %q: only FIFO is implemented", c.MatchingRule)}
	}
	for _, pair := range c.RiskPairs {
		if !pair.IsDirect(c.ReportingCurrency) {
			return &LotInvariantError{Reason: fmt.Sprintf("configured risk pair %s is not direct against reporting currency %s", pair, c.ReportingCurrency)}
		}
	}
	return nil
}

// LotManager owns one LotQueue per configured risk pair and is the single
// mutable component of an otherwise immutable State (DESIGN.md). It is
// shared by reference across every State snapshot produced during a run.
type LotManager struct {
	config LotConfig
	queues map[CurrencyPair]*LotQueue
}

// NewLotManager builds a LotManager with one empty queue per configured risk
// pair. It returns nil, nil when lot tracking is disabled, so callers can
// assign the result directly to State.LotManager.
func NewLotManager(cfg LotConfig) (*LotManager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m := &LotManager{
		config: cfg,
		queues: make(map[CurrencyPair]*LotQueue, len(cfg.RiskPairs)),
	}
	for _, pair := range cfg.RiskPairs {
		m.queues[pair] = NewLotQueue(pair)
	}
	return m, nil
}

// Config returns the manager's static configuration.
func (m *LotManager) Config() LotConfig { return m.config }

func (m *LotManager) queueFor(pair CurrencyPair) (*LotQueue, error) {
	q, ok := m.queues[pair]
	if !ok {
		return nil, &LotInvariantError{Reason: fmt.Sprintf("risk pair %s is not configured for lot tracking", pair)}
	}
	return q, nil
}

// AddLot routes lot to its risk pair's queue, rejecting lots for
// unconfigured pairs.
func (m *LotManager) AddLot(lot Lot) error {
	q, err := m.queueFor(lot.RiskPair)
	if err != nil {
		return err
	}
	return q.AddLot(lot)
}

// MatchLots runs the FIFO match for pair and returns the resulting matches.
func (m *LotManager) MatchLots(pair CurrencyPair, quantity Quantity, incomingSide Side, closePrice Price, closeTimestamp time.Time) ([]LotMatch, error) {
	q, err := m.queueFor(pair)
	if err != nil {
		return nil, err
	}
	return q.Match(quantity, incomingSide, closePrice, closeTimestamp)
}

// GetNetPosition returns the signed net open position for pair.
func (m *LotManager) GetNetPosition(pair CurrencyPair) (Quantity, error) {
	q, err := m.queueFor(pair)
	if err != nil {
		return Quantity{}, err
	}
	return q.NetPosition(), nil
}

// GetAllNetPositions returns the signed net open position of every
// configured risk pair, including pairs with no open lots (net zero).
func (m *LotManager) GetAllNetPositions() map[CurrencyPair]Quantity {
	out := make(map[CurrencyPair]Quantity, len(m.queues))
	for pair, q := range m.queues {
		out[pair] = q.NetPosition()
	}
	return out
}

// ComputeTotalUnrealizedPnL sums the unrealized P&L of every open lot across
// every configured risk pair, valued at the mids supplied in marketMids.
// Each lot's P&L is in its risk pair's quote currency, which for a
// configured (direct) pair is the reporting currency; no conversion is
// applied. A pair with no entry in marketMids contributes nothing, and the
// omission is not logged.
func (m *LotManager) ComputeTotalUnrealizedPnL(marketMids map[CurrencyPair]Price) Money {
	total := Cash(0, m.config.ReportingCurrency)
	for pair, q := range m.queues {
		mid, ok := marketMids[pair]
		if !ok {
			continue
		}
		for _, lot := range q.OpenLots() {
			total = total.Add(lot.ComputeUnrealizedPnL(mid))
		}
	}
	return total
}

// Summary builds the lot_tracking section of a clock-tick snapshot or the
// final-state document (spec.md §4.H, §4.J, §8 scenario 5), including the
// total unrealized P&L across every configured risk pair valued at
// marketMids (see [LotManager.ComputeTotalUnrealizedPnL]).
func (m *LotManager) Summary(marketMids map[CurrencyPair]Price) map[string]any {
	totalOpen := 0
	totalClosed := 0
	netPositions := make(map[string]Quantity, len(m.queues))
	for pair, q := range m.queues {
		totalOpen += len(q.OpenLots())
		totalClosed += len(q.ClosedLots())
		netPositions[pair.String()] = q.NetPosition()
	}
	return map[string]any{
		"matching_rule":        m.config.MatchingRule,
		"total_open_lots":      totalOpen,
		"total_closed_lots":    totalClosed,
		"net_positions":        netPositions,
		"total_unrealized_pnl": m.ComputeTotalUnrealizedPnL(marketMids),
	}
}
