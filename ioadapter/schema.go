// Package ioadapter implements the boundary-only I/O described in
// spec.md §4.J: one columnar input file per event kind, an append-only
// NDJSON audit log, a columnar snapshot file, and a JSON final-state
// document.
package ioadapter

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Every input/snapshot column is modeled as either a string (used for
// decimals, enums, and ISO-8601 timestamps, preserving their canonical
// textual form end to end) or an int64 (sequence_id, event_count). This
// keeps every per-event-kind schema mechanically derived from its field
// list instead of hand-tuned per Arrow type.

func stringField(name string, nullable bool) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: nullable}
}

func int64Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}
}

var clientTradeSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("pair", false),
	stringField("side", false),
	stringField("notional", false),
	stringField("price", false),
	stringField("client_id", false),
	stringField("trade_id", false),
}, nil)

var marketUpdateSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("pair", false),
	stringField("bid", false),
	stringField("ask", false),
	stringField("mid", false),
}, nil)

var configUpdateSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("key", false),
	stringField("value", false),
}, nil)

var hedgeOrderSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("order_id", false),
	stringField("pair", false),
	stringField("side", false),
	stringField("notional", false),
	stringField("limit_price", true),
}, nil)

var hedgeFillSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("order_id", false),
	stringField("pair", false),
	stringField("side", false),
	stringField("notional", false),
	stringField("fill_price", false),
	stringField("slippage", false),
}, nil)

var clockTickSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	int64Field("sequence_id"),
	stringField("tick_label", false),
}, nil)

var snapshotSchema = arrow.NewSchema([]arrow.Field{
	stringField("timestamp", false),
	stringField("tick_label", false),
	int64Field("event_count"),
	stringField("total_equity", false),
	stringField("reporting_currency", false),
	stringField("cash_balances_json", false),
	stringField("positions_json", false),
	stringField("exposures_json", false),
	stringField("lot_tracking_json", true),
}, nil)
