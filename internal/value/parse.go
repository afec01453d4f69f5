package value

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"
)

// ParseError reports a token that could not be converted to Type.
type ParseError struct {
	Token string
	Type  Type
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Token, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errNotOneChar = errors.New("expected exactly one character")
	errNoLayout   = errors.New("no known date layout matched")
)

// Default layouts tried when a temporal column has no source pattern.
var (
	dateLayouts     = []string{time.DateOnly}
	dateTimeLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999"}
	dateTimeTZ      = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999Z07:00"}
)

// Parse converts token into a Value of type t.
//
// A token equal to any entry of noneLiterals yields the absent value. For
// temporal types a non-empty pattern is a strftime-style format such as
// "%d.%m.%Y"; it is ignored for the other types.
func Parse(token string, t Type, pattern string, noneLiterals []string) (Value, error) {
	for _, n := range noneLiterals {
		if token == n {
			return None(t), nil
		}
	}
	v, err := parse(token, t, pattern)
	if err != nil {
		return None(t), &ParseError{Token: token, Type: t, Err: err}
	}
	return v, nil
}

func parse(s string, t Type, pattern string) (Value, error) {
	switch t {
	case String:
		return Of(t, s), nil
	case Char:
		if utf8.RuneCountInString(s) != 1 {
			return Value{}, errNotOneChar
		}
		r, _ := utf8.DecodeRuneInString(s)
		return Of(t, r), nil
	case Int8, Int16, Int32, Int64:
		i, err := strconv.ParseInt(s, 10, intBits(t))
		if err != nil {
			return Value{}, numErr(err)
		}
		return Of(t, narrowInt(t, i)), nil
	case UInt8, UInt16, UInt32, UInt64:
		u, err := strconv.ParseUint(s, 10, intBits(t))
		if err != nil {
			return Value{}, numErr(err)
		}
		return Of(t, narrowUint(t, u)), nil
	case Float32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, numErr(err)
		}
		return Of(t, float32(f)), nil
	case Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, numErr(err)
		}
		return Of(t, f), nil
	case Bool:
		b, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return Value{}, numErr(err)
		}
		return Of(t, b), nil
	case Decimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return Value{}, err
		}
		return Of(t, d), nil
	case Date, DateTime, DateTimeTZ:
		tm, err := parseTime(s, t, pattern)
		if err != nil {
			return Value{}, err
		}
		return Of(t, tm), nil
	}
	return Value{}, fmt.Errorf("unsupported type %s", t)
}

func parseTime(s string, t Type, pattern string) (time.Time, error) {
	if pattern != "" {
		return strftime.Parse(pattern, s)
	}
	var layouts []string
	switch t {
	case Date:
		layouts = dateLayouts
	case DateTime:
		layouts = dateTimeLayouts
	default:
		layouts = dateTimeTZ
	}
	for _, l := range layouts {
		if tm, err := time.Parse(l, s); err == nil {
			return tm, nil
		}
	}
	if t == DateTimeTZ {
		// Looser formats ("Mon, 02 Jan 2006 15:04:05 MST", "2006-01-02 15:04:05 +0100").
		if tm, err := dateparse.ParseStrict(s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, errNoLayout
}

// numErr drops strconv's function/input prefix, the token is already part
// of ParseError.
func numErr(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

func intBits(t Type) int {
	switch t {
	case Int8, UInt8:
		return 8
	case Int16, UInt16:
		return 16
	case Int32, UInt32:
		return 32
	}
	return 64
}

func narrowInt(t Type, i int64) any {
	switch t {
	case Int8:
		return int8(i)
	case Int16:
		return int16(i)
	case Int32:
		return int32(i)
	}
	return i
}

func narrowUint(t Type, u uint64) any {
	switch t {
	case UInt8:
		return uint8(u)
	case UInt16:
		return uint16(u)
	case UInt32:
		return uint32(u)
	}
	return u
}

// CheckPattern reports whether pattern is usable for t. Patterns only
// matter for temporal types.
func CheckPattern(t Type, pattern string) error {
	if pattern == "" || !t.IsTemporal() {
		return nil
	}
	if _, err := strftime.Layout(pattern); err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return nil
}
