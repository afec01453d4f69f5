package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Value is a typed cell value. Data holds the Go representation for Type
// (string, rune, int8..int64, uint8..uint64, float32, float64, bool,
// decimal.Decimal or time.Time); a nil Data is the absent state.
type Value struct {
	Type Type
	Data any
}

// None returns the absent value of type t.
func None(t Type) Value { return Value{Type: t} }

// Of wraps an already-typed Go value.
func Of(t Type, data any) Value { return Value{Type: t, Data: data} }

// Str is shorthand for a present String value.
func Str(s string) Value { return Value{Type: String, Data: s} }

// Absent reports whether v carries no data.
func (v Value) Absent() bool { return v.Data == nil }

// Default returns the default (zero) value of type t.
func Default(t Type) Value {
	switch t {
	case Char:
		return Of(t, rune(0))
	case Int8:
		return Of(t, int8(0))
	case Int16:
		return Of(t, int16(0))
	case Int32:
		return Of(t, int32(0))
	case Int64:
		return Of(t, int64(0))
	case UInt8:
		return Of(t, uint8(0))
	case UInt16:
		return Of(t, uint16(0))
	case UInt32:
		return Of(t, uint32(0))
	case UInt64:
		return Of(t, uint64(0))
	case Float32:
		return Of(t, float32(0))
	case Float64:
		return Of(t, float64(0))
	case Bool:
		return Of(t, false)
	case Decimal:
		return Of(t, decimal.Zero)
	case Date, DateTime, DateTimeTZ:
		return Of(t, time.Time{})
	default:
		return Of(String, "")
	}
}

// Equal reports whether v and o have the same type and the same data.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	if v.Data == nil || o.Data == nil {
		return v.Data == nil && o.Data == nil
	}
	switch a := v.Data.(type) {
	case decimal.Decimal:
		b, ok := o.Data.(decimal.Decimal)
		return ok && a.Equal(b)
	case time.Time:
		b, ok := o.Data.(time.Time)
		return ok && a.Equal(b)
	}
	return v.Data == o.Data
}

// String renders v for display; the absent value renders as "".
func (v Value) String() string {
	if r, ok := v.Data.(rune); ok && v.Type == Char {
		return string(r)
	}
	switch d := v.Data.(type) {
	case nil:
		return ""
	case string:
		return d
	case float32:
		return strconv.FormatFloat(float64(d), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	case decimal.Decimal:
		return d.String()
	case time.Time:
		switch v.Type {
		case Date:
			return d.Format(time.DateOnly)
		case DateTime:
			return d.Format("2006-01-02T15:04:05.999999999")
		}
		return d.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v.Data)
}

// Interface returns the Go value suitable for database/sql and JSON
// encoding: nil when absent, decimals and characters as strings.
func (v Value) Interface() any {
	if r, ok := v.Data.(rune); ok && v.Type == Char {
		return string(r)
	}
	if d, ok := v.Data.(decimal.Decimal); ok {
		return d.String()
	}
	return v.Data
}

// MarshalJSON encodes absent as null, numbers and booleans natively and
// everything else as its String form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Type == Char && v.Data != nil {
		return json.Marshal(v.String())
	}
	switch d := v.Data.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return json.Marshal(d)
	case float32:
		if f := float64(d); math.IsNaN(f) || math.IsInf(f, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(d)
	case float64:
		// JSON has no NaN or Inf; they travel as "NaN", "+Inf", "-Inf".
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(d)
	case bool, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return json.Marshal(d)
	}
	return json.Marshal(v.String())
}
