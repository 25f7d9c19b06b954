package ioadapter

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	desk "github.com/fxdesk/deskreplay"
)

var allocator = memory.NewGoAllocator()

// writeRecord builds a single-batch Arrow IPC file from schema and however
// many rows appendRow is invoked for, closing w's writer on every return
// path.
func writeRecord(w io.Writer, schema *arrow.Schema, numRows int, appendRow func(b *array.RecordBuilder, row int)) error {
	builder := array.NewRecordBuilder(allocator, schema)
	defer builder.Release()

	for row := 0; row < numRows; row++ {
		appendRow(builder, row)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(allocator))
	if err != nil {
		return err
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func appendString(b *array.RecordBuilder, col int, v string) {
	b.Field(col).(*array.StringBuilder).Append(v)
}

func appendOptionalString(b *array.RecordBuilder, col int, v *string) {
	if v == nil {
		b.Field(col).(*array.StringBuilder).AppendNull()
		return
	}
	b.Field(col).(*array.StringBuilder).Append(*v)
}

func appendInt64(b *array.RecordBuilder, col int, v int64) {
	b.Field(col).(*array.Int64Builder).Append(v)
}

// WriteClientTrades writes trades to w as a single Arrow IPC batch.
func WriteClientTrades(w io.Writer, trades []*desk.ClientTrade) error {
	return writeRecord(w, clientTradeSchema, len(trades), func(b *array.RecordBuilder, row int) {
		t := trades[row]
		appendString(b, 0, formatTimestamp(t.Timestamp()))
		appendInt64(b, 1, t.SequenceID())
		appendString(b, 2, t.Pair.String())
		appendString(b, 3, t.Side.String())
		appendString(b, 4, t.Notional.String())
		appendString(b, 5, t.Price.String())
		appendString(b, 6, t.ClientID)
		appendString(b, 7, t.TradeID)
	})
}

// WriteMarketUpdates writes updates to w as a single Arrow IPC batch.
func WriteMarketUpdates(w io.Writer, updates []*desk.MarketUpdate) error {
	return writeRecord(w, marketUpdateSchema, len(updates), func(b *array.RecordBuilder, row int) {
		u := updates[row]
		appendString(b, 0, formatTimestamp(u.Timestamp()))
		appendInt64(b, 1, u.SequenceID())
		appendString(b, 2, u.Pair.String())
		appendString(b, 3, u.Rate.Bid.String())
		appendString(b, 4, u.Rate.Ask.String())
		appendString(b, 5, u.Rate.Mid.String())
	})
}

// WriteConfigUpdates writes updates to w as a single Arrow IPC batch.
func WriteConfigUpdates(w io.Writer, updates []*desk.ConfigUpdate) error {
	return writeRecord(w, configUpdateSchema, len(updates), func(b *array.RecordBuilder, row int) {
		u := updates[row]
		appendString(b, 0, formatTimestamp(u.Timestamp()))
		appendInt64(b, 1, u.SequenceID())
		appendString(b, 2, u.Key)
		appendString(b, 3, u.Value)
	})
}

// WriteHedgeOrders writes orders to w as a single Arrow IPC batch.
func WriteHedgeOrders(w io.Writer, orders []*desk.HedgeOrder) error {
	return writeRecord(w, hedgeOrderSchema, len(orders), func(b *array.RecordBuilder, row int) {
		o := orders[row]
		appendString(b, 0, formatTimestamp(o.Timestamp()))
		appendInt64(b, 1, o.SequenceID())
		appendString(b, 2, o.OrderID)
		appendString(b, 3, o.Pair.String())
		appendString(b, 4, o.Side.String())
		appendString(b, 5, o.Notional.String())
		var limit *string
		if o.LimitPrice != nil {
			s := o.LimitPrice.String()
			limit = &s
		}
		appendOptionalString(b, 6, limit)
	})
}

// WriteHedgeFills writes fills to w as a single Arrow IPC batch.
func WriteHedgeFills(w io.Writer, fills []*desk.HedgeFill) error {
	return writeRecord(w, hedgeFillSchema, len(fills), func(b *array.RecordBuilder, row int) {
		f := fills[row]
		appendString(b, 0, formatTimestamp(f.Timestamp()))
		appendInt64(b, 1, f.SequenceID())
		appendString(b, 2, f.OrderID)
		appendString(b, 3, f.Pair.String())
		appendString(b, 4, f.Side.String())
		appendString(b, 5, f.Notional.String())
		appendString(b, 6, f.FillPrice.String())
		appendString(b, 7, f.Slippage.Decimal().String())
	})
}

// WriteClockTicks writes ticks to w as a single Arrow IPC batch.
func WriteClockTicks(w io.Writer, ticks []*desk.ClockTick) error {
	return writeRecord(w, clockTickSchema, len(ticks), func(b *array.RecordBuilder, row int) {
		t := ticks[row]
		appendString(b, 0, formatTimestamp(t.Timestamp()))
		appendInt64(b, 1, t.SequenceID())
		appendString(b, 2, t.Label)
	})
}
