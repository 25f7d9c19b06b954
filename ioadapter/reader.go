package ioadapter

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/shopspring/decimal"

	desk "github.com/fxdesk/deskreplay"
)

// readAtSeeker is the minimal interface ipc.NewFileReader requires; both
// *os.File and bytes.Reader satisfy it.
type readAtSeeker interface {
	io.ReaderAt
	io.Seeker
}

func openReader(r readAtSeeker) (*ipc.FileReader, error) {
	return ipc.NewFileReader(r, ipc.WithAllocator(allocator))
}

func str(rec arrow.Record, i, row int) string {
	return rec.Column(i).(*array.String).Value(row)
}

func optStr(rec arrow.Record, i, row int) *string {
	c := rec.Column(i).(*array.String)
	if c.IsNull(row) {
		return nil
	}
	v := c.Value(row)
	return &v
}

func i64(rec arrow.Record, i, row int) int64 {
	return rec.Column(i).(*array.Int64).Value(row)
}

func decFromStr(s string) (decimal.Decimal, error) { return decimal.NewFromString(s) }

// ReadClientTrades parses every row of r back into ClientTrade events.
func ReadClientTrades(r readAtSeeker) ([]*desk.ClientTrade, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.ClientTrade
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, fmt.Errorf("client_trade row %d: %w", row, err)
			}
			pair, err := desk.ParseCurrencyPair(str(rec, 2, row))
			if err != nil {
				return nil, err
			}
			side, err := desk.ParseSide(str(rec, 3, row))
			if err != nil {
				return nil, err
			}
			notional, err := decFromStr(str(rec, 4, row))
			if err != nil {
				return nil, err
			}
			price, err := decFromStr(str(rec, 5, row))
			if err != nil {
				return nil, err
			}
			trade, err := desk.NewClientTrade(ts, i64(rec, 1, row), pair, side, desk.Qty(notional), desk.Px(price), str(rec, 6, row), str(rec, 7, row))
			if err != nil {
				return nil, err
			}
			out = append(out, trade)
		}
	}
	return out, nil
}

// ReadMarketUpdates parses every row of r back into MarketUpdate events.
func ReadMarketUpdates(r readAtSeeker) ([]*desk.MarketUpdate, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.MarketUpdate
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, err
			}
			pair, err := desk.ParseCurrencyPair(str(rec, 2, row))
			if err != nil {
				return nil, err
			}
			bid, err := decFromStr(str(rec, 3, row))
			if err != nil {
				return nil, err
			}
			ask, err := decFromStr(str(rec, 4, row))
			if err != nil {
				return nil, err
			}
			mid, err := decFromStr(str(rec, 5, row))
			if err != nil {
				return nil, err
			}
			u, err := desk.NewMarketUpdate(ts, i64(rec, 1, row), pair, desk.Px(bid), desk.Px(ask), desk.Px(mid))
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
	}
	return out, nil
}

// ReadConfigUpdates parses every row of r back into ConfigUpdate events.
func ReadConfigUpdates(r readAtSeeker) ([]*desk.ConfigUpdate, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.ConfigUpdate
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, err
			}
			u, err := desk.NewConfigUpdate(ts, i64(rec, 1, row), str(rec, 2, row), str(rec, 3, row))
			if err != nil {
				return nil, err
			}
			out = append(out, u)
		}
	}
	return out, nil
}

// ReadHedgeOrders parses every row of r back into HedgeOrder events.
func ReadHedgeOrders(r readAtSeeker) ([]*desk.HedgeOrder, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.HedgeOrder
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, err
			}
			pair, err := desk.ParseCurrencyPair(str(rec, 3, row))
			if err != nil {
				return nil, err
			}
			side, err := desk.ParseSide(str(rec, 4, row))
			if err != nil {
				return nil, err
			}
			notional, err := decFromStr(str(rec, 5, row))
			if err != nil {
				return nil, err
			}
			var limit *desk.Price
			if ls := optStr(rec, 6, row); ls != nil {
				lp, err := decFromStr(*ls)
				if err != nil {
					return nil, err
				}
				p := desk.Px(lp)
				limit = &p
			}
			o, err := desk.NewHedgeOrder(ts, i64(rec, 1, row), str(rec, 2, row), pair, side, desk.Qty(notional), limit)
			if err != nil {
				return nil, err
			}
			out = append(out, o)
		}
	}
	return out, nil
}

// ReadHedgeFills parses every row of r back into HedgeFill events.
func ReadHedgeFills(r readAtSeeker) ([]*desk.HedgeFill, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.HedgeFill
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, err
			}
			pair, err := desk.ParseCurrencyPair(str(rec, 3, row))
			if err != nil {
				return nil, err
			}
			side, err := desk.ParseSide(str(rec, 4, row))
			if err != nil {
				return nil, err
			}
			notional, err := decFromStr(str(rec, 5, row))
			if err != nil {
				return nil, err
			}
			fillPrice, err := decFromStr(str(rec, 6, row))
			if err != nil {
				return nil, err
			}
			slippage, err := decFromStr(str(rec, 7, row))
			if err != nil {
				return nil, err
			}
			pairCur := pair.Quote
			fill, err := desk.NewHedgeFill(ts, i64(rec, 1, row), str(rec, 2, row), pair, side, desk.Qty(notional), desk.Px(fillPrice), desk.Cash(slippage, pairCur))
			if err != nil {
				return nil, err
			}
			out = append(out, fill)
		}
	}
	return out, nil
}

// ReadClockTicks parses every row of r back into ClockTick events.
func ReadClockTicks(r readAtSeeker) ([]*desk.ClockTick, error) {
	fr, err := openReader(r)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	var out []*desk.ClockTick
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		n := int(rec.NumRows())
		for row := 0; row < n; row++ {
			ts, err := parseTimestamp(str(rec, 0, row))
			if err != nil {
				return nil, err
			}
			t, err := desk.NewClockTick(ts, i64(rec, 1, row), str(rec, 2, row))
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}
