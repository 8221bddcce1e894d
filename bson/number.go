package bson

import (
	"fmt"
	"math"
)

// The As* methods convert between the numeric BSON types. A conversion
// succeeds only when the value is representable in the target type without
// loss. Inexact conversions such as 2.5 to an integer type fail rather than
// truncate.

// AsInt32 converts the numeric value to an int32 if it is exactly
// representable.
func (v Value) AsInt32() (int32, error) {
	if i, ok := v.asInt32(); ok {
		return i, nil
	}
	return 0, numericConversionError(v, "a 32-bit integer")
}

// AsInt64 converts the numeric value to an int64 if it is exactly
// representable.
func (v Value) AsInt64() (int64, error) {
	if i, ok := v.asInt64(); ok {
		return i, nil
	}
	return 0, numericConversionError(v, "a 64-bit integer")
}

// AsInt converts the numeric value to an int if it is exactly representable.
func (v Value) AsInt() (int, error) {
	if i, ok := v.asInt(); ok {
		return i, nil
	}
	return 0, numericConversionError(v, "an integer")
}

// AsFloat64 converts the numeric value to a float64 if it is exactly
// representable.
func (v Value) AsFloat64() (float64, error) {
	if f, ok := v.asFloat64(); ok {
		return f, nil
	}
	return 0, numericConversionError(v, "a double")
}

func (v Value) asInt32() (int32, bool) {
	switch v.t {
	case TypeInt32:
		return v.Int32(), true
	case TypeInt64:
		i := v.Int64()
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false
		}
		return int32(i), true
	case TypeDouble:
		f := v.Double()
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return 0, false
		}
		return int32(f), true
	default:
		return 0, false
	}
}

func (v Value) asInt64() (int64, bool) {
	switch v.t {
	case TypeInt32:
		return int64(v.Int32()), true
	case TypeInt64:
		return v.Int64(), true
	case TypeDouble:
		f := v.Double()
		// 2^63 itself is representable as a float64 but not as an int64, so
		// the upper bound is exclusive.
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func (v Value) asInt() (int, bool) {
	i, ok := v.asInt64()
	if !ok || i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

func (v Value) asFloat64() (float64, bool) {
	switch v.t {
	case TypeDouble:
		return v.Double(), true
	case TypeInt32:
		return float64(v.Int32()), true
	case TypeInt64:
		i := v.Int64()
		f := float64(i)
		if f >= math.MaxInt64 || f < math.MinInt64 || int64(f) != i {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func numericConversionError(v Value, target string) error {
	if !v.IsNumber() {
		return &LogicError{Message: fmt.Sprintf("cannot convert %v to %s", v.t, target)}
	}
	return &LogicError{Message: fmt.Sprintf("cannot represent %v as %s without loss", v.Interface(), target)}
}
