package types

import (
	"fmt"
	"math"
)

// Value represents a single database value. Concrete types use native Go types:
//   UInt8 -> uint8, UInt16 -> uint16, ..., String -> string, DateTime -> uint32
type Value = interface{}

// ToFloat64 converts a numeric value to float64 for arithmetic.
func ToFloat64(dt DataType, v Value) (float64, error) {
	switch dt {
	case TypeUInt8:
		return float64(v.(uint8)), nil
	case TypeUInt16:
		return float64(v.(uint16)), nil
	case TypeUInt32:
		return float64(v.(uint32)), nil
	case TypeUInt64:
		return float64(v.(uint64)), nil
	case TypeInt8:
		return float64(v.(int8)), nil
	case TypeInt16:
		return float64(v.(int16)), nil
	case TypeInt32:
		return float64(v.(int32)), nil
	case TypeInt64:
		return float64(v.(int64)), nil
	case TypeFloat32:
		return float64(v.(float32)), nil
	case TypeFloat64:
		return v.(float64), nil
	case TypeDateTime:
		return float64(v.(uint32)), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float64", dt.Name())
	}
}

// ToInt64 converts a numeric value to int64.
func ToInt64(dt DataType, v Value) (int64, error) {
	switch dt {
	case TypeUInt8:
		return int64(v.(uint8)), nil
	case TypeUInt16:
		return int64(v.(uint16)), nil
	case TypeUInt32:
		return int64(v.(uint32)), nil
	case TypeUInt64:
		return int64(v.(uint64)), nil
	case TypeInt8:
		return int64(v.(int8)), nil
	case TypeInt16:
		return int64(v.(int16)), nil
	case TypeInt32:
		return int64(v.(int32)), nil
	case TypeInt64:
		return v.(int64), nil
	case TypeFloat32:
		return int64(v.(float32)), nil
	case TypeFloat64:
		return int64(v.(float64)), nil
	case TypeDateTime:
		return int64(v.(uint32)), nil
	default:
		return 0, fmt.Errorf("cannot convert %s to int64", dt.Name())
	}
}

// CompareValues compares two values of the same DataType.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareValues(dt DataType, a, b Value) int {
	switch dt {
	case TypeUInt8:
		return cmpOrdered(a.(uint8), b.(uint8))
	case TypeUInt16:
		return cmpOrdered(a.(uint16), b.(uint16))
	case TypeUInt32:
		return cmpOrdered(a.(uint32), b.(uint32))
	case TypeUInt64:
		return cmpOrdered(a.(uint64), b.(uint64))
	case TypeInt8:
		return cmpOrdered(a.(int8), b.(int8))
	case TypeInt16:
		return cmpOrdered(a.(int16), b.(int16))
	case TypeInt32:
		return cmpOrdered(a.(int32), b.(int32))
	case TypeInt64:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeFloat32:
		return cmpOrdered(a.(float32), b.(float32))
	case TypeFloat64:
		return cmpOrdered(a.(float64), b.(float64))
	case TypeString:
		return cmpOrdered(a.(string), b.(string))
	case TypeDateTime:
		return cmpOrdered(a.(uint32), b.(uint32))
	default:
		return 0
	}
}

type ordered interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~float32 | ~float64 | ~string
}

func cmpOrdered[T ordered](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Coerce converts v to the native representation of dt. It returns false
// when the conversion would lose information: out-of-range integers,
// non-integral floats into integer types, or cross-kind conversions such
// as string to numeric. Callers treat a failed coercion as "not usable",
// never as an error.
func Coerce(dt DataType, v Value) (Value, bool) {
	switch src := v.(type) {
	case int64:
		return coerceInt(dt, src)
	case float64:
		return coerceFloat(dt, src)
	case string:
		if dt == TypeString {
			return src, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func coerceInt(dt DataType, i int64) (Value, bool) {
	switch dt {
	case TypeUInt8:
		if i < 0 || i > math.MaxUint8 {
			return nil, false
		}
		return uint8(i), true
	case TypeUInt16:
		if i < 0 || i > math.MaxUint16 {
			return nil, false
		}
		return uint16(i), true
	case TypeUInt32:
		if i < 0 || i > math.MaxUint32 {
			return nil, false
		}
		return uint32(i), true
	case TypeUInt64:
		if i < 0 {
			return nil, false
		}
		return uint64(i), true
	case TypeInt8:
		if i < math.MinInt8 || i > math.MaxInt8 {
			return nil, false
		}
		return int8(i), true
	case TypeInt16:
		if i < math.MinInt16 || i > math.MaxInt16 {
			return nil, false
		}
		return int16(i), true
	case TypeInt32:
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, false
		}
		return int32(i), true
	case TypeInt64:
		return i, true
	case TypeFloat32:
		return float32(i), true
	case TypeFloat64:
		return float64(i), true
	case TypeDateTime:
		if i < 0 || i > math.MaxUint32 {
			return nil, false
		}
		return uint32(i), true
	default:
		return nil, false
	}
}

func coerceFloat(dt DataType, f float64) (Value, bool) {
	switch dt {
	case TypeFloat32:
		return float32(f), true
	case TypeFloat64:
		return f, true
	}
	if !dt.IsInteger() {
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	if f < math.MinInt64 || f > math.MaxInt64 {
		return nil, false
	}
	return coerceInt(dt, int64(f))
}

// ValueToString converts a value to its string representation.
func ValueToString(dt DataType, v Value) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}
