// Package value is the typed-value system the parser delegates to: it knows
// the closed set of scalar target types, how to parse a token into one of
// them, and what the absent state and the default value of a type are.
package value

import (
	"fmt"
	"strings"
)

// Type identifies a target scalar type for a column.
type Type uint8

const (
	// String is the generic string type and the zero value of Type.
	String Type = iota
	Char
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Bool
	Decimal
	Date
	DateTime
	DateTimeTZ
)

var typeNames = [...]string{
	String:     "String",
	Char:       "Char",
	Int8:       "Int8",
	Int16:      "Int16",
	Int32:      "Int32",
	Int64:      "Int64",
	UInt8:      "UInt8",
	UInt16:     "UInt16",
	UInt32:     "UInt32",
	UInt64:     "UInt64",
	Float32:    "Float32",
	Float64:    "Float64",
	Bool:       "Bool",
	Decimal:    "Decimal",
	Date:       "Date",
	DateTime:   "DateTime",
	DateTimeTZ: "DateTimeTZ",
}

// String returns the canonical name of t, e.g. "Int32".
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// IsTemporal reports whether t is one of the date/time types that honor a
// source pattern.
func (t Type) IsTemporal() bool {
	return t == Date || t == DateTime || t == DateTimeTZ
}

// ParseType resolves a type name case-insensitively. A few common aliases
// ("text", "int", "float", "boolean", "naivedate", "naivedatetime") are
// accepted as well.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, tn := range typeNames {
		if strings.ToLower(tn) == n {
			return Type(i), nil
		}
	}
	switch n {
	case "text", "str":
		return String, nil
	case "int", "integer":
		return Int64, nil
	case "float", "double":
		return Float64, nil
	case "boolean":
		return Bool, nil
	case "naivedate":
		return Date, nil
	case "naivedatetime":
		return DateTime, nil
	}
	return String, fmt.Errorf("unknown value type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if int(t) >= len(typeNames) {
		return nil, fmt.Errorf("invalid value type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
