package desk

import (
	"testing"
	"time"
)

func TestDecomposeTradeDirectPair(t *testing.T) {
	s := NewState("USD")
	converter := NewConverter(s)
	legs, err := DecomposeTrade(eurUSD, Buy, Qty(100), Px(1.10), "USD", converter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 1 {
		t.Fatalf("expected a single leg for a direct pair, got %d", len(legs))
	}
	leg := legs[0]
	if leg.RiskPair != eurUSD {
		t.Errorf("risk pair got %s, want %s", leg.RiskPair, eurUSD)
	}
	if leg.Side != Sell {
		t.Errorf("desk takes the opposite side of a client BUY: got %s, want SELL", leg.Side)
	}
	if got, want := leg.Quantity.String(), "100"; got != want {
		t.Errorf("quantity got %s, want %s", got, want)
	}
}

func TestDecomposeTradeCrossPair(t *testing.T) {
	eurJPY := NewCurrencyPair("EUR", "JPY")
	s := NewState("USD")
	s = s.UpdateMarketRate(NewCurrencyPair("EUR", "USD"), mustRate(t, 1.09, 1.11, 1.10))
	s = s.UpdateMarketRate(NewCurrencyPair("JPY", "USD"), mustRate(t, 0.0066, 0.0068, 0.0067))
	converter := NewConverter(s)

	legs, err := DecomposeTrade(eurJPY, Buy, Qty(100), Px(160), "USD", converter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs for a cross pair, got %d", len(legs))
	}
	if legs[0].RiskPair != NewCurrencyPair("EUR", "USD") {
		t.Errorf("leg 1 risk pair got %s, want EUR/USD", legs[0].RiskPair)
	}
	if legs[1].RiskPair != NewCurrencyPair("JPY", "USD") {
		t.Errorf("leg 2 risk pair got %s, want JPY/USD", legs[1].RiskPair)
	}
	if legs[0].Side == legs[1].Side {
		t.Error("the two legs of a cross decomposition must take opposite sides")
	}
	if got, want := legs[1].Quantity.String(), "16000"; got != want {
		t.Errorf("leg 2 (quote-currency) quantity got %s, want %s (100 * 160)", got, want)
	}
}

func TestDecomposeTradeMissingRateIsDecompositionError(t *testing.T) {
	eurJPY := NewCurrencyPair("EUR", "JPY")
	s := NewState("USD")
	converter := NewConverter(s)

	_, err := DecomposeTrade(eurJPY, Buy, Qty(100), Px(160), "USD", converter)
	if err == nil {
		t.Fatal("expected a DecompositionError with no cached rates")
	}
	var decompErr *DecompositionError
	if !asDecompositionError(err, &decompErr) {
		t.Fatalf("expected *DecompositionError, got %T: %v", err, err)
	}
}

func asDecompositionError(err error, target **DecompositionError) bool {
	de, ok := err.(*DecompositionError)
	if ok {
		*target = de
	}
	return ok
}

func mustRate(t *testing.T, bid, ask, mid float64) MarketRate {
	t.Helper()
	r, err := NewMarketRate(Px(bid), Px(ask), Px(mid))
	if err != nil {
		t.Fatalf("NewMarketRate: unexpected error: %v", err)
	}
	return r
}

func TestLegsToLotsRequiresOpenMid(t *testing.T) {
	legs := []Leg{{RiskPair: eurUSD, Side: Sell, Quantity: Qty(100), TradePrice: Px(1.10), DecompositionPath: "EUR/USD"}}
	_, err := legsToLots(legs, "T1", time.Now(), map[CurrencyPair]Price{}, "USD")
	if err == nil {
		t.Fatal("expected error when no open mid is cached for the leg's risk pair")
	}
}

func TestLegsToLotsBuildsOneLotPerLeg(t *testing.T) {
	legs := []Leg{{RiskPair: eurUSD, Side: Sell, Quantity: Qty(100), TradePrice: Px(1.10), DecompositionPath: "EUR/USD"}}
	lots, err := legsToLots(legs, "T1", time.Now(), map[CurrencyPair]Price{eurUSD: Px(1.10)}, "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lots) != 1 {
		t.Fatalf("expected 1 lot, got %d", len(lots))
	}
	if got, want := lots[0].LotID, "T1_EUR/USD"; got != want {
		t.Errorf("lot_id got %s, want %s", got, want)
	}
}
