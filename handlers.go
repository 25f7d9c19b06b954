package desk

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutputRecord is one entry of the audit log: a timestamped, tagged record
// emitted by a handler (spec.md §4.J). record_type is one of the tags
// listed in spec.md §6; data is the tag-specific payload, serialized via
// whatever MarshalJSON its concrete type implements.
type OutputRecord struct {
	Timestamp  time.Time
	RecordType string
	Data       any
}

func (r OutputRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("timestamp", r.Timestamp.UTC().Format(time.RFC3339Nano))
	w.Append("record_type", r.RecordType)
	w.Append("data", r.Data)
	return w.MarshalJSON()
}

func newRecord(ts time.Time, recordType string, data any) OutputRecord {
	return OutputRecord{Timestamp: ts, RecordType: recordType, Data: data}
}

// handleClientTrade implements spec.md §4.H's ClientTrade handler: the
// desk-perspective double entry, one client_trade audit record, and — if a
// LotManager is attached — the lot-tracking sub-protocol of §4.H.1.
func handleClientTrade(s State, e *ClientTrade) (State, []OutputRecord) {
	dir := decimalFromInt64(e.Side.Dir())
	baseDelta := e.Notional.value.Mul(dir).Neg()
	quoteDelta := e.Notional.value.Mul(e.Price.value).Mul(dir)
	positionDelta := e.Notional.value.Mul(dir).Neg()

	next := s.UpdateCash(e.Pair.Base, baseDelta)
	next = next.UpdateCash(e.Pair.Quote, quoteDelta)
	next = next.UpdatePosition(e.Pair, positionDelta)

	records := []OutputRecord{newRecord(e.Timestamp(), "client_trade", clientTradeRecord{
		Pair: e.Pair, Side: e.Side, Notional: e.Notional, Price: e.Price, ClientID: e.ClientID, TradeID: e.TradeID,
	})}

	if next.LotManager != nil {
		lotRecords := runLotTrackingProtocol(&next, e)
		records = append(records, lotRecords...)
	}

	next = next.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, records
}

type clientTradeRecord struct {
	Pair     CurrencyPair
	Side     Side
	Notional Quantity
	Price    Price
	ClientID string
	TradeID  string
}

func (r clientTradeRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("pair", r.Pair)
	w.Append("side", r.Side)
	w.Append("notional", r.Notional)
	w.Append("price", r.Price)
	w.Append("client_id", r.ClientID)
	w.Append("trade_id", r.TradeID)
	return w.MarshalJSON()
}

// runLotTrackingProtocol mutates s.LotManager in place, implementing
// spec.md §4.H.1 exactly. It never fails the run: decomposition and
// rate-lookup failures degrade into a lot_tracking_error record.
func runLotTrackingProtocol(s *State, e *ClientTrade) []OutputRecord {
	converter := NewConverter(*s)
	legs, err := DecomposeTrade(e.Pair, e.Side, e.Notional, e.Price, s.ReportingCurrency, converter)
	if err != nil {
		return []OutputRecord{newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()})}
	}

	openMids := make(map[CurrencyPair]Price, len(legs))
	for _, leg := range legs {
		rate, ok := s.GetMarketRate(leg.RiskPair)
		if !ok {
			return []OutputRecord{newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{
				TradeID: e.TradeID, Reason: (&DecompositionError{MissingPair: leg.RiskPair}).Error(),
			})}
		}
		openMids[leg.RiskPair] = rate.Mid
	}

	lots, err := legsToLots(legs, e.TradeID, e.Timestamp(), openMids, s.ReportingCurrency)
	if err != nil {
		return []OutputRecord{newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()})}
	}

	var records []OutputRecord
	for i, leg := range legs {
		net, err := s.LotManager.GetNetPosition(leg.RiskPair)
		if err != nil {
			records = append(records, newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()}))
			continue
		}
		impact := leg.Quantity.value
		if leg.Side == Sell {
			impact = impact.Neg()
		}
		reduces := (net.value.IsPositive() && impact.IsNegative()) || (net.value.IsNegative() && impact.IsPositive())

		if reduces {
			matches, err := s.LotManager.MatchLots(leg.RiskPair, leg.Quantity, leg.Side, leg.TradePrice, e.Timestamp())
			if err != nil {
				records = append(records, newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()}))
				continue
			}
			var matched Quantity
			for _, m := range matches {
				matched = matched.Add(m.MatchedQuantity)
				records = append(records, newRecord(e.Timestamp(), "lot_match", lotMatchRecord{
					LotID: m.Lot.LotID, RiskPair: leg.RiskPair, MatchedQuantity: m.MatchedQuantity, RealizedPnL: m.RealizedPnL, ClosePrice: m.ClosePrice,
				}))
			}
			if matched.LessThan(leg.Quantity) {
				residual := leg.Quantity.Sub(matched)
				residualLot := lots[i]
				residualLot.Quantity = residual
				residualLot.OriginalQuantity = residual
				if err := s.LotManager.AddLot(residualLot); err != nil {
					records = append(records, newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()}))
					continue
				}
				records = append(records, newRecord(e.Timestamp(), "lot_created", lotCreatedRecord{Lot: residualLot}))
			}
		} else {
			if err := s.LotManager.AddLot(lots[i]); err != nil {
				records = append(records, newRecord(e.Timestamp(), "lot_tracking_error", lotTrackingErrorRecord{TradeID: e.TradeID, Reason: err.Error()}))
				continue
			}
			records = append(records, newRecord(e.Timestamp(), "lot_created", lotCreatedRecord{Lot: lots[i]}))
		}
	}
	return records
}

type lotTrackingErrorRecord struct {
	TradeID string
	Reason  string
}

func (r lotTrackingErrorRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("trade_id", r.TradeID)
	w.Append("reason", r.Reason)
	return w.MarshalJSON()
}

type lotMatchRecord struct {
	LotID           string
	RiskPair        CurrencyPair
	MatchedQuantity Quantity
	RealizedPnL     Money
	ClosePrice      Price
}

func (r lotMatchRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("lot_id", r.LotID)
	w.Append("risk_pair", r.RiskPair)
	w.Append("matched_quantity", r.MatchedQuantity)
	w.Append("realized_pnl", r.RealizedPnL)
	w.Append("close_price", r.ClosePrice)
	return w.MarshalJSON()
}

type lotCreatedRecord struct {
	Lot Lot
}

func (r lotCreatedRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("lot_id", r.Lot.LotID)
	w.Append("risk_pair", r.Lot.RiskPair)
	w.Append("side", r.Lot.Side)
	w.Append("quantity", r.Lot.Quantity)
	w.Append("trade_price", r.Lot.TradePrice)
	w.Append("decomposition_path", r.Lot.DecompositionPath)
	return w.MarshalJSON()
}

// handleMarketUpdate overwrites the cached rate and emits a market_update
// record (spec.md §4.H).
func handleMarketUpdate(s State, e *MarketUpdate) (State, []OutputRecord) {
	next := s.UpdateMarketRate(e.Pair, e.Rate)
	record := newRecord(e.Timestamp(), "market_update", marketUpdateRecord{Pair: e.Pair, Rate: e.Rate})
	next = next.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, []OutputRecord{record}
}

type marketUpdateRecord struct {
	Pair CurrencyPair
	Rate MarketRate
}

func (r marketUpdateRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("pair", r.Pair)
	w.EmbedFrom(r.Rate)
	return w.MarshalJSON()
}

// handleConfigUpdate applies the known key and emits a config_update
// record echoing the raw string value (spec.md §4.H).
func handleConfigUpdate(s State, e *ConfigUpdate) (State, []OutputRecord) {
	next := s.UpdateConfig(e.Key, e.Value)
	record := newRecord(e.Timestamp(), "config_update", configUpdateRecord{Key: e.Key, Value: e.Value})
	next = next.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, []OutputRecord{record}
}

type configUpdateRecord struct {
	Key   string
	Value string
}

func (r configUpdateRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("key", r.Key)
	w.Append("value", r.Value)
	return w.MarshalJSON()
}

// handleHedgeOrder mutates nothing beyond the counter and emits a
// hedge_order record (spec.md §4.H).
func handleHedgeOrder(s State, e *HedgeOrder) (State, []OutputRecord) {
	record := newRecord(e.Timestamp(), "hedge_order", hedgeOrderRecord{
		OrderID: e.OrderID, Pair: e.Pair, Side: e.Side, Notional: e.Notional, LimitPrice: e.LimitPrice,
	})
	next := s.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, []OutputRecord{record}
}

type hedgeOrderRecord struct {
	OrderID    string
	Pair       CurrencyPair
	Side       Side
	Notional   Quantity
	LimitPrice *Price
}

func (r hedgeOrderRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("order_id", r.OrderID)
	w.Append("pair", r.Pair)
	w.Append("side", r.Side)
	w.Append("notional", r.Notional)
	w.Optional("limit_price", r.LimitPrice)
	return w.MarshalJSON()
}

// handleHedgeFill applies the same desk-perspective double entry as a
// ClientTrade using fill_price, then deducts slippage from quote-currency
// cash, and emits a hedge_fill record (spec.md §4.H).
func handleHedgeFill(s State, e *HedgeFill) (State, []OutputRecord) {
	dir := decimalFromInt64(e.Side.Dir())
	baseDelta := e.Notional.value.Mul(dir).Neg()
	quoteDelta := e.Notional.value.Mul(e.FillPrice.value).Mul(dir)
	positionDelta := e.Notional.value.Mul(dir).Neg()

	next := s.UpdateCash(e.Pair.Base, baseDelta)
	next = next.UpdateCash(e.Pair.Quote, quoteDelta)
	next = next.UpdatePosition(e.Pair, positionDelta)

	if e.Slippage.IsPositive() {
		next = next.UpdateCash(e.Pair.Quote, e.Slippage.value.Neg())
	}

	record := newRecord(e.Timestamp(), "hedge_fill", hedgeFillRecord{
		OrderID: e.OrderID, Pair: e.Pair, Side: e.Side, Notional: e.Notional, FillPrice: e.FillPrice, Slippage: e.Slippage,
	})
	next = next.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, []OutputRecord{record}
}

type hedgeFillRecord struct {
	OrderID   string
	Pair      CurrencyPair
	Side      Side
	Notional  Quantity
	FillPrice Price
	Slippage  Money
}

func (r hedgeFillRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("order_id", r.OrderID)
	w.Append("pair", r.Pair)
	w.Append("side", r.Side)
	w.Append("notional", r.Notional)
	w.Append("fill_price", r.FillPrice)
	w.Append("slippage", r.Slippage)
	return w.MarshalJSON()
}

// handleClockTick mutates nothing beyond the counter and builds a
// clock_tick snapshot record: cash, positions, exposures, total equity in
// the reporting currency, event count, and — if lot tracking is active —
// its summary (spec.md §4.H).
func handleClockTick(s State, e *ClockTick) (State, []OutputRecord) {
	converter := NewConverter(s)
	totalEquity := Cash(0, s.ReportingCurrency)
	for ccy, balance := range s.cashBalances {
		converted, err := converter.ConvertToReporting(balance, ccy, s.ReportingCurrency)
		if err != nil {
			continue // unconvertible currencies are skipped, per spec.md §9.
		}
		totalEquity = totalEquity.Add(Cash(converted, s.ReportingCurrency))
	}

	snapshot := ClockTickSnapshot{
		Label:             e.Label,
		Timestamp:         e.Timestamp(),
		Cash:              s.cashBalances,
		Positions:         s.positions,
		Exposures:         s.ComputeExposures(),
		TotalEquity:       totalEquity,
		ReportingCurrency: s.ReportingCurrency,
		EventCount:        s.EventCount,
	}
	if s.LotManager != nil {
		snapshot.LotTracking = s.LotManager.Summary(s.marketMids())
	}

	next := s.IncrementEventCount(formatTimestamp(e.Timestamp()))
	return next, []OutputRecord{newRecord(e.Timestamp(), "clock_tick", snapshot)}
}

// ClockTickSnapshot is the payload of a clock_tick [OutputRecord]: the full
// accounting picture as of that tick (spec.md §4.H, §4.J). It is exported
// so the snapshot columnar writer can read it back out of the audit trail
// without re-deriving it from state.
type ClockTickSnapshot struct {
	Label             string
	Timestamp         time.Time
	Cash              map[Currency]decimal.Decimal
	Positions         map[CurrencyPair]decimal.Decimal
	Exposures         map[Currency]decimal.Decimal
	TotalEquity       Money
	ReportingCurrency Currency
	EventCount        int64
	LotTracking       map[string]any
}

func (r ClockTickSnapshot) MarshalJSON() ([]byte, error) {
	cash := make(map[string]decimal.Decimal, len(r.Cash))
	for k, v := range r.Cash {
		cash[k.String()] = v
	}
	positions := make(map[string]decimal.Decimal, len(r.Positions))
	for k, v := range r.Positions {
		positions[k.String()] = v
	}
	exposures := make(map[string]decimal.Decimal, len(r.Exposures))
	for k, v := range r.Exposures {
		exposures[k.String()] = v
	}

	var w jsonObjectWriter
	w.Append("tick_label", r.Label)
	w.Append("cash_balances", cash)
	w.Append("positions", positions)
	w.Append("exposures", exposures)
	w.Append("total_equity", r.TotalEquity)
	w.Append("reporting_currency", r.ReportingCurrency.String())
	w.Append("event_count", r.EventCount)
	w.Optional("lot_tracking", r.LotTracking)
	return w.MarshalJSON()
}

func formatTimestamp(ts time.Time) string { return ts.UTC().Format(time.RFC3339Nano) }
