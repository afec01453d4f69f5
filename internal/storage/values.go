package storage

import (
	"math"
	"strconv"
)

// DriverValue adapts a row value (see schema.Row.Values) for database/sql
// drivers. The default parameter converter rejects uint64 values above
// MaxInt64, so those travel as their decimal string.
func DriverValue(v any) any {
	if u, ok := v.(uint64); ok && u > math.MaxInt64 {
		return strconv.FormatUint(u, 10)
	}
	return v
}

// DriverValues applies DriverValue to every element of row in place.
func DriverValues(row []any) []any {
	for i, v := range row {
		row[i] = DriverValue(v)
	}
	return row
}
