package ioadapter

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	desk "github.com/fxdesk/deskreplay"
)

var eurUSD = desk.NewCurrencyPair("EUR", "USD")

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 4, 12, 30, 45, 123000000, time.UTC)
	formatted := formatTimestamp(ts)
	parsed, err := parseTimestamp(formatted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("got %v, want %v", parsed, ts)
	}
}

func TestWriteAndReadClientTrades(t *testing.T) {
	ts := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	trade, err := desk.NewClientTrade(ts, 1, eurUSD, desk.Buy, desk.Qty(100), desk.Px(1.10), "ACME", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "trades.arrow")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteClientTrades(f, []*desk.ClientTrade{trade}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Close()

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rf.Close()
	got, err := ReadClientTrades(rf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	if got[0].TradeID != "T1" || got[0].ClientID != "ACME" {
		t.Errorf("got %+v", got[0])
	}
	if !got[0].Price.Equal(desk.Px(1.10)) {
		t.Errorf("price got %s, want 1.10", got[0].Price)
	}
	if !got[0].Timestamp().Equal(ts) {
		t.Errorf("timestamp got %v, want %v", got[0].Timestamp(), ts)
	}
}

func TestWriteAndReadHedgeOrderWithOptionalLimitPrice(t *testing.T) {
	ts := time.Now()
	limit := desk.Px(1.12)
	order, err := desk.NewHedgeOrder(ts, 1, "O1", eurUSD, desk.Sell, desk.Qty(50), &limit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withoutLimit, err := desk.NewHedgeOrder(ts, 2, "O2", eurUSD, desk.Buy, desk.Qty(50), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "orders.arrow")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := WriteHedgeOrders(f, []*desk.HedgeOrder{order, withoutLimit}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Close()

	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rf.Close()
	got, err := ReadHedgeOrders(rf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	if got[0].LimitPrice == nil || !got[0].LimitPrice.Equal(limit) {
		t.Errorf("order 1 limit price got %v, want %s", got[0].LimitPrice, limit)
	}
	if got[1].LimitPrice != nil {
		t.Errorf("order 2 limit price got %v, want nil", got[1].LimitPrice)
	}
}

func TestMergerLoadSortsByTimestampThenSequence(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	trade, err := desk.NewClientTrade(base.Add(time.Minute), 1, eurUSD, desk.Buy, desk.Qty(100), desk.Px(1.10), "ACME", "T1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	update, err := desk.NewMarketUpdate(base, 2, eurUSD, desk.Px(1.09), desk.Px(1.11), desk.Px(1.10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeArrowFile(t, filepath.Join(dir, "trades.arrow"), func(f *os.File) error {
		return WriteClientTrades(f, []*desk.ClientTrade{trade})
	})
	writeArrowFile(t, filepath.Join(dir, "updates.arrow"), func(f *os.File) error {
		return WriteMarketUpdates(f, []*desk.MarketUpdate{update})
	})

	merger := NewMerger(dir, map[string]string{
		FileKindClientTrade:  "trades.arrow",
		FileKindMarketUpdate: "updates.arrow",
	})
	events, err := merger.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind() != desk.KindMarketUpdate {
		t.Errorf("expected the earlier market update first, got %s", events[0].Kind())
	}
	if events[1].Kind() != desk.KindClientTrade {
		t.Errorf("expected the later client trade second, got %s", events[1].Kind())
	}
}

func TestMergerLoadToleratesUnconfiguredKinds(t *testing.T) {
	merger := NewMerger(t.TempDir(), map[string]string{})
	events, err := merger.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func writeArrowFile(t *testing.T, path string, write func(f *os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditLogWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewAuditLogWriter(&buf)
	records := []desk.OutputRecord{
		{Timestamp: time.Now(), RecordType: "market_update", Data: map[string]any{"pair": "EUR/USD"}},
	}
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gz, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer gz.Close()

	var decoded map[string]any
	if err := json.NewDecoder(gz).Decode(&decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["record_type"] != "market_update" {
		t.Errorf("got %v, want market_update", decoded["record_type"])
	}
}

func TestWriteFinalState(t *testing.T) {
	s := desk.NewState("USD")
	s = s.UpdateCash("USD", desk.Cash(100, "USD").Decimal())

	var buf bytes.Buffer
	if err := WriteFinalState(&buf, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["reporting_currency"] != "USD" {
		t.Errorf("got %v, want USD", decoded["reporting_currency"])
	}
}

func TestWriteAndExtractSnapshots(t *testing.T) {
	snap := desk.ClockTickSnapshot{
		Label:             "EOD",
		Timestamp:         time.Now(),
		Cash:              map[desk.Currency]decimal.Decimal{"USD": decimal.NewFromInt(1000)},
		Positions:         map[desk.CurrencyPair]decimal.Decimal{eurUSD: decimal.NewFromInt(100)},
		Exposures:         map[desk.Currency]decimal.Decimal{"EUR": decimal.NewFromInt(100)},
		TotalEquity:       desk.Cash(1000, "USD"),
		ReportingCurrency: "USD",
		EventCount:        5,
	}
	records := []desk.OutputRecord{{Timestamp: snap.Timestamp, RecordType: "clock_tick", Data: snap}}
	extracted := ExtractSnapshots(records)
	if len(extracted) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(extracted))
	}

	// ExtractSnapshots must hand back the exact struct it was given, field
	// for field, not just the count checked above.
	if diff := cmp.Diff(snap, extracted[0]); diff != "" {
		t.Errorf("extracted snapshot differs from the original (-want +got):\n%s", diff)
	}
}
