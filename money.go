package desk

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// newDecimal is a convenient factory for decimal.Decimal, generalizing the
// teacher's numeric-literal constructors to every call site in the engine
// that needs to lift a Go numeric literal into exact decimal arithmetic.
func newDecimal[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// decimalFromInt64 lifts a small directional multiplier (+1/-1) into a
// decimal.Decimal without going through the generic newDecimal dispatch.
func decimalFromInt64(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Currency is a short uppercase ISO-4217-like symbol, e.g. "EUR" or "USD".
type Currency string

// String returns the currency symbol.
func (c Currency) String() string { return string(c) }

// goMoney resolves the currency's formatting metadata (fraction digits,
// symbol) without ever touching the exact decimal arithmetic performed
// elsewhere in the engine.
func (c Currency) goMoney() *gomoney.Currency {
	return gomoney.New(0, string(c)).Currency()
}

// CurrencyPair is a pair BASE/QUOTE of currencies.
type CurrencyPair struct {
	Base  Currency
	Quote Currency
}

// NewCurrencyPair builds a pair from two currency symbols.
func NewCurrencyPair(base, quote Currency) CurrencyPair {
	return CurrencyPair{Base: base, Quote: quote}
}

// ParseCurrencyPair parses the canonical "BASE/QUOTE" textual form.
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return CurrencyPair{}, fmt.Errorf("invalid currency pair %q: want BASE/QUOTE", s)
	}
	return CurrencyPair{Base: Currency(base), Quote: Currency(quote)}, nil
}

// String returns the canonical "BASE/QUOTE" textual form.
func (p CurrencyPair) String() string { return string(p.Base) + "/" + string(p.Quote) }

// IsDirect reports whether p is quoted directly in the reporting currency,
// i.e. it is a risk pair rather than a cross.
func (p CurrencyPair) IsDirect(reportingCurrency Currency) bool { return p.Quote == reportingCurrency }

// Inverse returns the QUOTE/BASE pair.
func (p CurrencyPair) Inverse() CurrencyPair { return CurrencyPair{Base: p.Quote, Quote: p.Base} }

func (p CurrencyPair) MarshalJSON() ([]byte, error) { return quoteJSON(p.String()) }

// Side is the direction of a trade, always stated from the client's
// perspective; the desk always takes the opposite side.
type Side int

const (
	// Buy means the client buys the base currency from the desk.
	Buy Side = iota
	// Sell means the client sells the base currency to the desk.
	Sell
)

// Opposite returns the desk's side for a given client side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// String renders the side as "BUY" or "SELL".
func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// ParseSide parses "BUY"/"SELL" (case-insensitive).
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	default:
		return 0, fmt.Errorf("invalid side %q: want BUY or SELL", s)
	}
}

func (s Side) MarshalJSON() ([]byte, error) { return quoteJSON(s.String()) }

// Dir returns +1 for Buy and -1 for Sell, the directional multiplier used
// throughout the lot P&L formulas.
func (s Side) Dir() int64 {
	if s == Buy {
		return 1
	}
	return -1
}

func quoteJSON(s string) ([]byte, error) { return []byte(`"` + s + `"`), nil }

// Quantity is an exact decimal amount of base-currency units. It carries no
// currency of its own: it denominates lot sizes, trade notionals, and
// positions, all of which are implicitly in the base currency of whatever
// pair they are attached to.
type Quantity struct{ value decimal.Decimal }

// Qty lifts a numeric literal or decimal.Decimal into a Quantity.
func Qty[T float32 | float64 | int | int32 | int64 | decimal.Decimal](v T) Quantity {
	return Quantity{value: newDecimal(v)}
}

func (q Quantity) Decimal() decimal.Decimal       { return q.value }
func (q Quantity) String() string                 { return q.value.String() }
func (q Quantity) IsZero() bool                   { return q.value.IsZero() }
func (q Quantity) IsPositive() bool               { return q.value.IsPositive() }
func (q Quantity) IsNegative() bool               { return q.value.IsNegative() }
func (q Quantity) Equal(o Quantity) bool          { return q.value.Equal(o.value) }
func (q Quantity) LessThan(o Quantity) bool       { return q.value.LessThan(o.value) }
func (q Quantity) GreaterThan(o Quantity) bool    { return q.value.GreaterThan(o.value) }
func (q Quantity) Add(o Quantity) Quantity        { return Quantity{q.value.Add(o.value)} }
func (q Quantity) Sub(o Quantity) Quantity        { return Quantity{q.value.Sub(o.value)} }
func (q Quantity) Neg() Quantity                  { return Quantity{q.value.Neg()} }
func (q Quantity) Mul(p Price) Quantity           { return Quantity{q.value.Mul(p.value)} }
func (q Quantity) Min(o Quantity) Quantity {
	if q.value.LessThan(o.value) {
		return q
	}
	return o
}

func (q Quantity) MarshalJSON() ([]byte, error)  { return q.value.MarshalJSON() }
func (q *Quantity) UnmarshalJSON(b []byte) error { return q.value.UnmarshalJSON(b) }

// Price is an exact decimal exchange rate or execution price: dimensionless,
// always quote-currency-per-base-currency-unit.
type Price struct{ value decimal.Decimal }

// Px lifts a numeric literal or decimal.Decimal into a Price.
func Px[T float32 | float64 | int | int32 | int64 | decimal.Decimal](v T) Price {
	return Price{value: newDecimal(v)}
}

func (p Price) Decimal() decimal.Decimal    { return p.value }
func (p Price) String() string              { return p.value.String() }
func (p Price) IsZero() bool                { return p.value.IsZero() }
func (p Price) IsPositive() bool            { return p.value.IsPositive() }
func (p Price) Equal(o Price) bool          { return p.value.Equal(o.value) }
func (p Price) LessThan(o Price) bool       { return p.value.LessThan(o.value) }
func (p Price) LessThanOrEqual(o Price) bool { return p.value.LessThanOrEqual(o.value) }
func (p Price) GreaterThan(o Price) bool    { return p.value.GreaterThan(o.value) }
func (p Price) Sub(o Price) Price           { return Price{p.value.Sub(o.value)} }
func (p Price) Inverse() (Price, error) {
	if p.value.IsZero() {
		return Price{}, fmt.Errorf("cannot invert a zero price")
	}
	return Price{decimal.NewFromInt(1).Div(p.value)}, nil
}

func (p Price) MarshalJSON() ([]byte, error)  { return p.value.MarshalJSON() }
func (p *Price) UnmarshalJSON(b []byte) error { return p.value.UnmarshalJSON(b) }

// Money is an exact decimal amount denominated in a specific currency, used
// for cash balances and realized/unrealized P&L.
type Money struct {
	value decimal.Decimal
	cur   Currency
}

// Cash lifts a numeric literal or decimal.Decimal into a Money value.
func Cash[T float32 | float64 | int | int32 | int64 | decimal.Decimal](v T, cur Currency) Money {
	return Money{value: newDecimal(v), cur: cur}
}

func (m Money) Currency() Currency       { return m.cur }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Neg() Money               { return Money{m.value.Neg(), m.cur} }
func (m Money) Equal(o Money) bool       { return m.cur == o.cur && m.value.Equal(o.value) }

func (m Money) Add(o Money) Money {
	if m.cur != "" && o.cur != "" && m.cur != o.cur {
		panic(fmt.Sprintf("currency mismatch: %s != %s", m.cur, o.cur))
	}
	cur := m.cur
	if cur == "" {
		cur = o.cur
	}
	return Money{m.value.Add(o.value), cur}
}

func (m Money) Sub(o Money) Money { return m.Add(o.Neg()) }

// MulQty scales a money amount by a dimensionless quantity, e.g. a per-unit
// P&L figure times the matched quantity.
func (m Money) MulQty(q Quantity) Money { return Money{m.value.Mul(q.value), m.cur} }

// String formats the amount using the currency's display fraction digits,
// following the teacher's go-money-backed formatter.
func (m Money) String() string {
	cur := m.cur.goMoney()
	rounded := m.value.Round(int32(cur.Fraction))
	return fmt.Sprintf("%s %s", rounded.StringFixed(int32(cur.Fraction)), cur.Code)
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", string(m.cur))
	w.Append("amount", m.value)
	return w.MarshalJSON()
}
