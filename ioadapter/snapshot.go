package ioadapter

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/array"
	json "github.com/segmentio/encoding/json"

	desk "github.com/fxdesk/deskreplay"
)

// WriteSnapshots writes one row per clock_tick snapshot to a columnar
// Arrow IPC file: the listed scalar columns plus JSON-encoded
// cash_balances/positions/exposures (spec.md §4.J).
func WriteSnapshots(w io.Writer, snapshots []desk.ClockTickSnapshot) error {
	return writeRecord(w, snapshotSchema, len(snapshots), func(b *array.RecordBuilder, row int) {
		snap := snapshots[row]

		cashJSON, _ := json.Marshal(stringKeyed(snap.Cash))
		positionsJSON, _ := json.Marshal(stringKeyedPairs(snap.Positions))
		exposuresJSON, _ := json.Marshal(stringKeyed(snap.Exposures))

		appendString(b, 0, formatTimestamp(snap.Timestamp))
		appendString(b, 1, snap.Label)
		appendInt64(b, 2, snap.EventCount)
		appendString(b, 3, snap.TotalEquity.Decimal().String())
		appendString(b, 4, snap.ReportingCurrency.String())
		appendString(b, 5, string(cashJSON))
		appendString(b, 6, string(positionsJSON))
		appendString(b, 7, string(exposuresJSON))

		var lotJSON *string
		if snap.LotTracking != nil {
			raw, _ := json.Marshal(snap.LotTracking)
			s := string(raw)
			lotJSON = &s
		}
		appendOptionalString(b, 8, lotJSON)
	})
}

func stringKeyed[K ~string, V any](m map[K]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func stringKeyedPairs[V any](m map[desk.CurrencyPair]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k.String()] = v
	}
	return out
}

// ExtractSnapshots filters an audit trail down to its clock_tick payloads,
// in emission order.
func ExtractSnapshots(records []desk.OutputRecord) []desk.ClockTickSnapshot {
	var out []desk.ClockTickSnapshot
	for _, r := range records {
		if snap, ok := r.Data.(desk.ClockTickSnapshot); ok {
			out = append(out, snap)
		}
	}
	return out
}
