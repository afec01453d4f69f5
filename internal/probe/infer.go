package probe

import (
	"math"
	"strconv"

	"github.com/sischcode/patti-csv/internal/value"
)

// DatePreference breaks ties between date patterns that match equally well,
// e.g. "01/02/2024" is valid as both day-first and month-first.
type DatePreference string

const (
	// PreferAuto ranks day-first over ISO over month-first.
	PreferAuto DatePreference = "auto"
	// PreferEU biases day-first patterns.
	PreferEU DatePreference = "eu"
	// PreferUS ranks month-first patterns above everything else.
	PreferUS DatePreference = "us"
)

type dateOrder int

const (
	orderOther dateOrder = iota
	orderMDY
	orderISO
	orderDMY
)

type temporalCandidate struct {
	typ     value.Type
	pattern string
	order   dateOrder
}

// temporalCandidates are tried in order; a pattern is only chosen when it
// parses every non-empty sample. Timestamps come first so a value carrying
// a time never degrades to a date.
var temporalCandidates = []temporalCandidate{
	{value.DateTimeTZ, "%Y-%m-%dT%H:%M:%S%:z", orderISO},
	{value.DateTimeTZ, "%Y-%m-%d %H:%M:%S %z", orderISO},
	{value.DateTime, "%Y-%m-%dT%H:%M:%S", orderISO},
	{value.DateTime, "%Y-%m-%d %H:%M:%S", orderISO},
	{value.DateTime, "%Y/%m/%d %H:%M:%S", orderISO},
	{value.DateTime, "%d.%m.%Y %H:%M:%S", orderDMY},
	{value.DateTime, "%d/%m/%Y %H:%M:%S", orderDMY},
	{value.DateTime, "%m/%d/%Y %H:%M:%S", orderMDY},
	{value.DateTime, "%d.%m.%Y %H:%M", orderDMY},
	{value.Date, "%Y-%m-%d", orderISO},
	{value.Date, "%d.%m.%Y", orderDMY},
	{value.Date, "%m.%d.%Y", orderMDY},
	{value.Date, "%d/%m/%Y", orderDMY},
	{value.Date, "%m/%d/%Y", orderMDY},
	{value.Date, "%d %b %Y", orderDMY},
	{value.Date, "%d-%b-%Y", orderDMY},
	{value.Date, "%Y/%m/%d", orderISO},
}

func (p DatePreference) weight(o dateOrder) int {
	switch o {
	case orderDMY:
		if p == PreferUS {
			return 2
		}
		return 4
	case orderISO:
		return 3
	case orderMDY:
		if p == PreferUS {
			return 5
		}
		return 1
	}
	return 0
}

// InferColumn picks the narrowest type every non-empty sample parses as:
// Int32, Int64, UInt64, Bool, Float64, a temporal type with its source
// pattern, and String as the fallback. Integers win over booleans, so a
// 0/1 column is numeric. An all-empty column is String.
func InferColumn(samples []string, pref DatePreference) (value.Type, string) {
	vals := nonEmpty(samples)
	if len(vals) == 0 {
		return value.String, ""
	}

	if allParse(vals, value.Int64, "") {
		if allMatch(vals, fitsInt32) {
			return value.Int32, ""
		}
		return value.Int64, ""
	}
	for _, t := range []value.Type{value.UInt64, value.Bool} {
		if allParse(vals, t, "") {
			return t, ""
		}
	}
	// ParseFloat also takes "nan" and "inf"; a text column of those stays text.
	if allMatch(vals, hasDigit) && allParse(vals, value.Float64, "") {
		return value.Float64, ""
	}

	best, bestWeight := -1, -1
	for i, c := range temporalCandidates {
		if best >= 0 && c.typ != temporalCandidates[best].typ {
			// A narrower type never beats a match of the wider one.
			break
		}
		if !allParse(vals, c.typ, c.pattern) {
			continue
		}
		if w := pref.weight(c.order); w > bestWeight {
			best, bestWeight = i, w
		}
	}
	if best >= 0 {
		return temporalCandidates[best].typ, temporalCandidates[best].pattern
	}
	return value.String, ""
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func allParse(vals []string, t value.Type, pattern string) bool {
	return allMatch(vals, func(s string) bool {
		_, err := value.Parse(s, t, pattern, nil)
		return err == nil
	})
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}

func fitsInt32(s string) bool {
	i, err := strconv.ParseInt(s, 10, 64)
	return err == nil && i >= math.MinInt32 && i <= math.MaxInt32
}
