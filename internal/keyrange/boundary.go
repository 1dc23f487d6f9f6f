package keyrange

import (
	"errors"
	"fmt"

	"github.com/ordodb/ordo/internal/types"
)

// ErrUnsupportedDomain is returned when a prefix limit is requested for a
// key domain that is not ordered text.
var ErrUnsupportedDomain = errors.New("prefix limit requires a string key domain")

// Boundary is one edge of a key range: a key value plus whether the value
// itself is included. A nil Value is the unbounded edge; it stands for
// negative infinity on the lower side and positive infinity on the upper
// side.
type Boundary struct {
	Value     types.Value
	Inclusive bool
}

// Unbounded returns the edge with no limit.
func Unbounded() Boundary { return Boundary{} }

// Include returns an inclusive boundary at v.
func Include(v types.Value) Boundary { return Boundary{Value: v, Inclusive: true} }

// Exclude returns an exclusive boundary at v.
func Exclude(v types.Value) Boundary { return Boundary{Value: v} }

// IsUnbounded reports whether the boundary has no limiting value.
func (b Boundary) IsUnbounded() bool { return b.Value == nil }

// PrefixLimit returns the exclusive upper boundary ending the run of all
// strings that start with prefix: trailing 0xFF bytes are stripped and the
// last remaining byte is incremented. When nothing remains there is no
// string past the run and the result is unbounded, which still bounds a
// scan soundly from above. Only ordered-text domains have a byte-wise
// successor, so any other DataType fails with ErrUnsupportedDomain.
func PrefixLimit(dt types.DataType, prefix string) (Boundary, error) {
	if !dt.IsOrderedText() {
		return Boundary{}, fmt.Errorf("%w: got %s", ErrUnsupportedDomain, dt.Name())
	}
	limit := []byte(prefix)
	for len(limit) > 0 && limit[len(limit)-1] == 0xFF {
		limit = limit[:len(limit)-1]
	}
	if len(limit) == 0 {
		return Unbounded(), nil
	}
	limit[len(limit)-1]++
	return Exclude(string(limit)), nil
}

// compareLower orders two boundaries acting as lower edges. Unbounded sorts
// first. At equal values the inclusive edge admits the value and therefore
// starts earlier than the exclusive one.
func compareLower(dt types.DataType, a, b Boundary) int {
	switch {
	case a.IsUnbounded() && b.IsUnbounded():
		return 0
	case a.IsUnbounded():
		return -1
	case b.IsUnbounded():
		return 1
	}
	c := types.CompareValues(dt, a.Value, b.Value)
	if c != 0 || a.Inclusive == b.Inclusive {
		return c
	}
	if a.Inclusive {
		return -1
	}
	return 1
}

// compareUpper orders two boundaries acting as upper edges. Unbounded sorts
// last. At equal values the exclusive edge stops short of the value and
// therefore ends earlier than the inclusive one.
func compareUpper(dt types.DataType, a, b Boundary) int {
	switch {
	case a.IsUnbounded() && b.IsUnbounded():
		return 0
	case a.IsUnbounded():
		return 1
	case b.IsUnbounded():
		return -1
	}
	c := types.CompareValues(dt, a.Value, b.Value)
	if c != 0 || a.Inclusive == b.Inclusive {
		return c
	}
	if a.Inclusive {
		return 1
	}
	return -1
}
