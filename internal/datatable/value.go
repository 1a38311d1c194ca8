package datatable

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is one row of caller-owned data. The schema is whatever the caller
// supplies; values are expected to be strings, numbers, booleans or nil.
type Record map[string]any

// Value returns the field value and whether the field is present.
func (r Record) Value(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	return v, ok
}

// Text coerces a field value to its textual form. nil becomes "null",
// booleans "true"/"false" and numbers use their shortest decimal form, so
// 45 and 45.0 both read "45".
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return trimExponent(strconv.FormatFloat(f, 'e', -1, bitSize))
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// trimExponent drops the zero padding Go adds to exponents, so 1e-07 reads
// 1e-7 and 1e+21 stays 1e+21.
func trimExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok || len(exp) < 2 {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// emptyText is the text used when a value is absent: missing and nil fields
// render as the empty string.
func emptyText(value any) string {
	if value == nil {
		return ""
	}
	return Text(value)
}

// sortText is the sort key of a value. Falsy values (nil, false, zero, NaN
// and "") compare as the empty string.
func sortText(value any) string {
	if isFalsy(value) {
		return ""
	}
	return Text(value)
}

func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int8:
		return v == 0
	case int16:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint:
		return v == 0
	case uint8:
		return v == 0
	case uint16:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return v == 0 || math.IsNaN(float64(v))
	case float64:
		return v == 0 || math.IsNaN(v)
	case json.Number:
		f, err := v.Float64()
		return err == nil && (f == 0 || math.IsNaN(f))
	default:
		return false
	}
}
