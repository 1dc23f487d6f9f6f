package keyrange

import (
	"strconv"
	"strings"

	"github.com/ordodb/ordo/internal/types"
)

// Range is one contiguous interval of key values, used to bound an ordered
// index scan. Either edge may be unbounded. The edges may also cross; a
// crossed range holds no keys but stays representable, and every operation
// here is defined on it.
type Range struct {
	DataType types.DataType
	Lower    Boundary
	Upper    Boundary
}

// Open returns the unrestricted range over dt: every key lies inside it.
// It is the identity for Intersect and absorbs Union.
func Open(dt types.DataType) Range {
	return Range{DataType: dt}
}

// IsOpen reports whether both edges are unbounded.
func (r Range) IsOpen() bool {
	return r.Lower.IsUnbounded() && r.Upper.IsUnbounded()
}

// IsEmpty reports whether the interval holds no keys: the edges crossed, or
// they meet at a value that at least one side excludes.
func (r Range) IsEmpty() bool {
	if r.Lower.IsUnbounded() || r.Upper.IsUnbounded() {
		return false
	}
	c := types.CompareValues(r.DataType, r.Lower.Value, r.Upper.Value)
	if c > 0 {
		return true
	}
	if c == 0 {
		return !(r.Lower.Inclusive && r.Upper.Inclusive)
	}
	return false
}

// Intersect returns the range holding exactly the keys in both r and o: the
// greater lower edge and the lesser upper edge win. The result may be
// crossed; scanning a crossed range yields nothing.
func (r Range) Intersect(o Range) Range {
	out := Range{DataType: r.DataType}
	if compareLower(r.DataType, r.Lower, o.Lower) >= 0 {
		out.Lower = r.Lower
	} else {
		out.Lower = o.Lower
	}
	if compareUpper(r.DataType, r.Upper, o.Upper) <= 0 {
		out.Upper = r.Upper
	} else {
		out.Upper = o.Upper
	}
	return out
}

// Union returns the smallest single interval enclosing both r and o. A
// Range cannot represent gaps, so the union of disjoint ranges also covers
// the keys between them. That widening loses precision, never matches:
// callers re-apply the exact predicate to every candidate row.
func (r Range) Union(o Range) Range {
	out := Range{DataType: r.DataType}
	if compareLower(r.DataType, r.Lower, o.Lower) <= 0 {
		out.Lower = r.Lower
	} else {
		out.Lower = o.Lower
	}
	if compareUpper(r.DataType, r.Upper, o.Upper) >= 0 {
		out.Upper = r.Upper
	} else {
		out.Upper = o.Upper
	}
	return out
}

// Invert returns the complement of a range built from one atomic
// comparison: a single bounded edge moves to the opposite side with its
// inclusivity flipped. The complement of a two-sided range is not a single
// interval, so it (and the complement of an open range) widens to Open.
// Composed ranges are never inverted; negation is pushed to the leaves
// before any interval is built.
func (r Range) Invert() Range {
	lower, upper := r.Lower.IsUnbounded(), r.Upper.IsUnbounded()
	switch {
	case !lower && upper:
		return Range{DataType: r.DataType, Upper: Boundary{Value: r.Lower.Value, Inclusive: !r.Lower.Inclusive}}
	case lower && !upper:
		return Range{DataType: r.DataType, Lower: Boundary{Value: r.Upper.Value, Inclusive: !r.Upper.Inclusive}}
	default:
		return Open(r.DataType)
	}
}

// Contains reports whether key value v lies inside the range.
func (r Range) Contains(v types.Value) bool {
	if !r.Lower.IsUnbounded() {
		c := types.CompareValues(r.DataType, v, r.Lower.Value)
		if c < 0 || (c == 0 && !r.Lower.Inclusive) {
			return false
		}
	}
	if !r.Upper.IsUnbounded() {
		c := types.CompareValues(r.DataType, v, r.Upper.Value)
		if c > 0 || (c == 0 && !r.Upper.Inclusive) {
			return false
		}
	}
	return true
}

// String renders the interval in bracket notation: [5, 10), (-inf, "ab"].
func (r Range) String() string {
	var sb strings.Builder
	if r.Lower.IsUnbounded() {
		sb.WriteString("(-inf")
	} else {
		if r.Lower.Inclusive {
			sb.WriteByte('[')
		} else {
			sb.WriteByte('(')
		}
		sb.WriteString(r.formatValue(r.Lower.Value))
	}
	sb.WriteString(", ")
	if r.Upper.IsUnbounded() {
		sb.WriteString("+inf)")
	} else {
		sb.WriteString(r.formatValue(r.Upper.Value))
		if r.Upper.Inclusive {
			sb.WriteByte(']')
		} else {
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

func (r Range) formatValue(v types.Value) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return types.ValueToString(r.DataType, v)
}
