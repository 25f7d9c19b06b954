package desk

import (
	"testing"
	"time"
)

var eurUSD = NewCurrencyPair("EUR", "USD")

func TestNewLotRejectsIndirectRiskPair(t *testing.T) {
	usdJPY := NewCurrencyPair("USD", "JPY")
	_, err := NewLot("L1", usdJPY, Buy, Qty(100), Px(150), time.Now(), "T1", "USD/JPY", Px(150), "USD")
	if err == nil {
		t.Fatal("expected error for a risk pair not direct against the reporting currency")
	}
}

func TestNewLotRejectsNonPositiveQuantity(t *testing.T) {
	_, err := NewLot("L1", eurUSD, Buy, Qty(0), Px(1.1), time.Now(), "T1", "EUR/USD", Px(1.1), "USD")
	if err == nil {
		t.Fatal("expected error for a zero original_quantity")
	}
}

func TestLotReduceAndClose(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lot, err := NewLot("L1", eurUSD, Buy, Qty(100), Px(1.10), ts, "T1", "EUR/USD", Px(1.10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reduced, err := lot.ReduceQuantity(Qty(40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := reduced.Quantity.String(), "60"; got != want {
		t.Errorf("quantity got %s, want %s", got, want)
	}
	if reduced.OriginalQuantity.String() != "100" {
		t.Error("original_quantity must not change on reduction")
	}
	if reduced.IsClosed() {
		t.Error("lot with 60 remaining should not be closed")
	}

	closed, err := reduced.ReduceQuantity(Qty(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closed = closed.Close(ts.Add(time.Hour), Px(1.12))
	if !closed.IsClosed() {
		t.Error("lot reduced to zero should be closed")
	}
	if closed.CloseTimestamp == nil || closed.CloseMid == nil {
		t.Error("Close must populate close metadata")
	}
}

func TestLotReduceQuantityRejectsOverdraw(t *testing.T) {
	lot, err := NewLot("L1", eurUSD, Buy, Qty(100), Px(1.10), time.Now(), "T1", "EUR/USD", Px(1.10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := lot.ReduceQuantity(Qty(101)); err == nil {
		t.Error("expected error reducing by more than the open quantity")
	}
	if _, err := lot.ReduceQuantity(Qty(0)); err == nil {
		t.Error("expected error reducing by a non-positive delta")
	}
}

func TestLotComputeRealizedPnL(t *testing.T) {
	lot, err := NewLot("L1", eurUSD, Buy, Qty(100), Px(1.10), time.Now(), "T1", "EUR/USD", Px(1.10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pnl, err := lot.ComputeRealizedPnL(Qty(100), Px(1.15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := pnl.Decimal().String(), "5"; got != want {
		t.Errorf("long EUR/USD closed 5 cents higher: got %s, want %s", got, want)
	}

	sellLot, err := NewLot("L2", eurUSD, Sell, Qty(100), Px(1.10), time.Now(), "T2", "EUR/USD", Px(1.10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pnl, err = sellLot.ComputeRealizedPnL(Qty(100), Px(1.15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := pnl.Decimal().String(), "-5"; got != want {
		t.Errorf("short EUR/USD closed 5 cents higher: got %s, want %s", got, want)
	}
}

func TestLotComputeUnrealizedPnLIsZeroWhenClosed(t *testing.T) {
	ts := time.Now()
	lot, err := NewLot("L1", eurUSD, Buy, Qty(100), Px(1.10), ts, "T1", "EUR/USD", Px(1.10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lot, err = lot.ReduceQuantity(Qty(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lot = lot.Close(ts, Px(1.15))
	if !lot.ComputeUnrealizedPnL(Px(1.20)).IsZero() {
		t.Error("a closed lot's unrealized P&L must be zero")
	}
}
