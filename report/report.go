// Package report renders a human-readable run summary from a [desk.State]
// snapshot, for the `run --summary` CLI flag.
package report

import (
	"sort"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	desk "github.com/fxdesk/deskreplay"
)

const summaryTemplate = `# Run Summary

**Reporting currency:** {{.ReportingCurrency}}
**Events handled:** {{.EventCount}}
**Last event timestamp:** {{.LastTimestamp}}

## Cash Balances

{{range .CashRows}}- **{{.Currency}}**: {{.Amount}}
{{else}}(no cash balances)
{{end}}
## Positions

{{range .PositionRows}}- **{{.Pair}}**: {{.Quantity}}
{{else}}(no open positions)
{{end}}
## Exposures

{{range .ExposureRows}}- **{{.Currency}}**: {{.Amount}}
{{else}}(no exposures)
{{end}}
{{if .LotTracking}}## Lot Tracking

- Open lots: {{.LotTracking.total_open_lots}}
- Closed lots: {{.LotTracking.total_closed_lots}}
- Matching rule: {{.LotTracking.matching_rule}}
- Total unrealized P&L: {{.LotTracking.total_unrealized_pnl}}
{{end}}
`

type cashRow struct {
	Currency string
	Amount   string
}

type positionRow struct {
	Pair     string
	Quantity string
}

type exposureRow struct {
	Currency string
	Amount   string
}

type summaryData struct {
	ReportingCurrency string
	EventCount        string
	LastTimestamp     string
	CashRows          []cashRow
	PositionRows      []positionRow
	ExposureRows      []exposureRow
	LotTracking       map[string]any
}

var tmpl = template.Must(template.New("summary").Parse(summaryTemplate))

// Render builds the markdown run summary for s.
func Render(s desk.State) (string, error) {
	dict := s.ToDict()

	data := summaryData{
		ReportingCurrency: s.ReportingCurrency.String(),
		EventCount:        humanize.Comma(s.EventCount),
		LastTimestamp:     s.LastTimestamp,
	}

	if cash, ok := dict["cash_balances"].(map[string]decimal.Decimal); ok {
		data.CashRows = toSortedRows(cash, func(k string, v decimal.Decimal) cashRow { return cashRow{Currency: k, Amount: v.String()} })
	}
	if positions, ok := dict["positions"].(map[string]decimal.Decimal); ok {
		data.PositionRows = toSortedRows(positions, func(k string, v decimal.Decimal) positionRow { return positionRow{Pair: k, Quantity: v.String()} })
	}
	if exposures, ok := dict["exposures"].(map[string]decimal.Decimal); ok {
		data.ExposureRows = toSortedRows(exposures, func(k string, v decimal.Decimal) exposureRow { return exposureRow{Currency: k, Amount: v.String()} })
	}
	if lots, ok := dict["lot_tracking"].(map[string]any); ok {
		data.LotTracking = lots
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toSortedRows[V any, T any](m map[string]V, build func(k string, v V) T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]T, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, build(k, m[k]))
	}
	return rows
}
