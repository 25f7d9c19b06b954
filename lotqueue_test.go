package desk

import (
	"testing"
	"time"
)

func mustLot(t *testing.T, lotID string, side Side, qty Quantity, price Price, openedAt time.Time, tradeID string) Lot {
	t.Helper()
	lot, err := NewLot(lotID, eurUSD, side, qty, price, openedAt, tradeID, eurUSD.String(), price, "USD")
	if err != nil {
		t.Fatalf("NewLot: unexpected error: %v", err)
	}
	return lot
}

func TestLotQueueAddLotRejectsWrongPair(t *testing.T) {
	q := NewLotQueue(eurUSD)
	wrongPair, _ := NewLot("L1", NewCurrencyPair("GBP", "USD"), Buy, Qty(100), Px(1.3), time.Now(), "T1", "", Px(1.3), "USD")
	if err := q.AddLot(wrongPair); err == nil {
		t.Error("expected error adding a lot for a different risk pair")
	}
}

func TestLotQueueNetPosition(t *testing.T) {
	q := NewLotQueue(eurUSD)
	ts := time.Now()
	if err := q.AddLot(mustLot(t, "L1", Buy, Qty(100), Px(1.10), ts, "T1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.AddLot(mustLot(t, "L2", Sell, Qty(30), Px(1.11), ts, "T2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := q.NetPosition().String(), "70"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestLotQueueMatchFullyClosesLot(t *testing.T) {
	q := NewLotQueue(eurUSD)
	ts := time.Now()
	if err := q.AddLot(mustLot(t, "L1", Buy, Qty(100), Px(1.10), ts, "T1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := q.Match(Qty(100), Sell, Px(1.15), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if got, want := matches[0].MatchedQuantity.String(), "100"; got != want {
		t.Errorf("matched quantity got %s, want %s", got, want)
	}
	if got, want := matches[0].RealizedPnL.Decimal().String(), "5"; got != want {
		t.Errorf("realized PnL got %s, want %s", got, want)
	}
	if len(q.OpenLots()) != 0 {
		t.Errorf("expected no open lots after a full close, got %d", len(q.OpenLots()))
	}
	if len(q.ClosedLots()) != 1 {
		t.Errorf("expected 1 closed lot, got %d", len(q.ClosedLots()))
	}
}

func TestLotQueueMatchPartiallyReducesAndSkipsSameSide(t *testing.T) {
	q := NewLotQueue(eurUSD)
	ts := time.Now()
	if err := q.AddLot(mustLot(t, "L2", Sell, Qty(50), Px(1.12), ts, "T2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.AddLot(mustLot(t, "L1", Buy, Qty(100), Px(1.10), ts, "T1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := q.Match(Qty(30), Sell, Px(1.15), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match (the same-side lot must be skipped), got %d", len(matches))
	}
	if matches[0].Lot.LotID != "L1" {
		t.Errorf("expected the same-side lot L2 to be skipped and the opposite-side lot L1 matched, got %s", matches[0].Lot.LotID)
	}
	if matches[0].RemainingLot == nil {
		t.Fatal("expected a remaining lot for a partial match")
	}
	if got, want := matches[0].RemainingLot.Quantity.String(), "70"; got != want {
		t.Errorf("remaining quantity got %s, want %s", got, want)
	}

	open := q.OpenLots()
	if len(open) != 2 {
		t.Fatalf("expected 2 open lots (L1 reduced, L2 untouched), got %d", len(open))
	}
}

func TestLotQueueMatchSpansMultipleLots(t *testing.T) {
	q := NewLotQueue(eurUSD)
	ts := time.Now()
	if err := q.AddLot(mustLot(t, "L1", Buy, Qty(60), Px(1.10), ts, "T1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.AddLot(mustLot(t, "L2", Buy, Qty(60), Px(1.12), ts, "T2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := q.Match(Qty(100), Sell, Px(1.15), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected a match against both lots, got %d", len(matches))
	}
	if got, want := matches[0].MatchedQuantity.String(), "60"; got != want {
		t.Errorf("first match got %s, want %s", got, want)
	}
	if got, want := matches[1].MatchedQuantity.String(), "40"; got != want {
		t.Errorf("second match got %s, want %s", got, want)
	}
	if len(q.OpenLots()) != 1 {
		t.Fatalf("expected L2 to remain open with 20 units, got %d open lots", len(q.OpenLots()))
	}
	if got, want := q.OpenLots()[0].Quantity.String(), "20"; got != want {
		t.Errorf("remaining open quantity got %s, want %s", got, want)
	}
}

func TestLotQueueMatchRejectsNonPositiveQuantity(t *testing.T) {
	q := NewLotQueue(eurUSD)
	if _, err := q.Match(Qty(0), Sell, Px(1.1), time.Now()); err == nil {
		t.Error("expected error matching a non-positive quantity")
	}
}
