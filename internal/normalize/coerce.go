package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceID converts a loosely typed identifier into an int64.
// Integral numbers and numeric strings are accepted; everything else is rejected.
func CoerceID(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case float64:
		return fromFloat(val)
	case json.Number:
		if id, err := val.Int64(); err == nil {
			return id, true
		}
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return fromFloat(f)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, false
		}
		if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return id, true
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return fromFloat(f)
	}
	return 0, false
}

func fromFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
