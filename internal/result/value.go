package result

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the scalar type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindDate
	KindText
)

// Value is a tagged scalar as returned by a SQL query: exactly one of the
// typed fields is meaningful, selected by Kind. Numbers are decimals so that
// integer, float and NUMERIC representations of the same quantity compare
// equal (1 == 1.0 == 1.00).
type Value struct {
	Kind   Kind
	Bool   bool
	Number decimal.Decimal
	Date   time.Time
	Text   string
}

func Null() Value {
	return Value{Kind: KindNull}
}

func Boolean(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Number: d}
}

func NumberFromInt(i int64) Value {
	return Number(decimal.NewFromInt(i))
}

func NumberFromFloat(f float64) Value {
	return Number(decimal.NewFromFloat(f))
}

// Date builds a date/timestamp value normalized to UTC. For DATE columns the
// driver hands back midnight UTC, so instant equality is calendar-date
// equality.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Date: t.UTC()}
}

func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Equal reports whether two values are the same after normalization:
// numbers by numeric value, dates by UTC instant, strings exact.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindNumber:
		return v.Number.Equal(other.Number)
	case KindDate:
		return v.Date.Equal(other.Date)
	default:
		return v.Text == other.Text
	}
}

// Less defines the fixed type-aware total order used to canonicalize rows:
// Null < Bool < Number < Date < Text, then within-kind ordering.
func (v Value) Less(other Value) bool {
	if v.Kind != other.Kind {
		return v.Kind < other.Kind
	}
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return !v.Bool && other.Bool
	case KindNumber:
		return v.Number.Cmp(other.Number) < 0
	case KindDate:
		return v.Date.Before(other.Date)
	default:
		return v.Text < other.Text
	}
}

// String renders the value in its canonical textual form. Used for sort key
// construction, signatures and diagnostics.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.Number.String()
	case KindDate:
		if isMidnightUTC(v.Date) {
			return v.Date.Format("2006-01-02")
		}
		return v.Date.Format(time.RFC3339Nano)
	default:
		return v.Text
	}
}

// MarshalJSON encodes numbers as JSON numbers and dates as ISO strings, the
// same shapes the report format has always used.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return []byte(v.Number.String()), nil
	case KindDate:
		return json.Marshal(v.String())
	default:
		return json.Marshal(v.Text)
	}
}

// UnmarshalJSON restores a value from its report encoding. Dates round-trip
// as text unless they parse as ISO dates or timestamps.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = Null()
		return nil
	}
	if s == "true" || s == "false" {
		*v = Boolean(s == "true")
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		if t, err := time.Parse("2006-01-02", text); err == nil {
			*v = Date(t)
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, text); err == nil {
			*v = Date(t)
			return nil
		}
		*v = Text(text)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid scalar %q: %w", s, err)
	}
	*v = Number(d)
	return nil
}

func isMidnightUTC(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
