package takeoff

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumberOrZero is the single coercion point for catalog quantities, unit weights
// and selection multipliers. Anything that is not a finite number becomes 0; it never fails.
func ToNumberOrZero(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		return ToNumberOrZero(string(t))
	case []byte:
		return ToNumberOrZero(string(t))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
