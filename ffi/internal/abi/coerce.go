package abi

import "math"

// CoerceToInt16 accepts any Go integer or integral float that fits in 16 bits.
func CoerceToInt16(value any) (int16, bool) {
	v, ok := CoerceToInt64(value)
	if !ok || v < math.MinInt16 || v > math.MaxInt16 {
		return 0, false
	}
	return int16(v), true
}

// CoerceToInt32 accepts any Go integer or integral float that fits in 32 bits.
func CoerceToInt32(value any) (int32, bool) {
	v, ok := CoerceToInt64(value)
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func CoerceToInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= float64(math.MinInt64) && v <= float64(math.MaxInt64) && v == float64(int64(v)) {
			return int64(v), true
		}
	case float32:
		if v >= float32(math.MinInt64) && v <= float32(math.MaxInt64) && v == float32(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// CoerceToFloat32 accepts float32, or a float64/integer whose magnitude fits
// a float32 without overflowing to infinity.
func CoerceToFloat32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		f := float32(v)
		if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
			return 0, false
		}
		return f, true
	default:
		if i, ok := CoerceToInt64(value); ok {
			return float32(i), true
		}
	}
	return 0, false
}

func CoerceToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		if i, ok := CoerceToInt64(value); ok {
			return float64(i), true
		}
	}
	return 0, false
}
