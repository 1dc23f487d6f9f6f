package keyrange

import (
	"errors"
	"fmt"

	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/types"
)

// ErrInvalidArgument is returned when Extract is called without a predicate
// or without a key column name.
var ErrInvalidArgument = errors.New("key range extraction needs a predicate and a key column")

// Extract computes a conservative key range for pred over the named key
// column of domain dt: every row satisfying pred has its key inside the
// returned range. Shapes the walk does not recognize contribute the open
// range, so the result may admit keys that never match, and callers must
// re-apply pred exactly to each candidate. It never excludes a match.
//
// Extract is pure and safe for concurrent use; recursion depth follows the
// predicate's depth.
func Extract(pred parser.Expression, keyColumn string, dt types.DataType) (Range, error) {
	if pred == nil {
		return Range{}, fmt.Errorf("%w: predicate is nil", ErrInvalidArgument)
	}
	if keyColumn == "" {
		return Range{}, fmt.Errorf("%w: key column is empty", ErrInvalidArgument)
	}
	x := extractor{key: keyColumn, dt: dt}
	return x.extract(pred), nil
}

type extractor struct {
	key string
	dt  types.DataType
}

func (x extractor) open() Range { return Open(x.dt) }

func (x extractor) extract(e parser.Expression) Range {
	switch n := e.(type) {
	case *parser.BinaryExpr:
		switch n.Op {
		case "AND":
			return x.extract(n.Left).Intersect(x.extract(n.Right))
		case "OR":
			return x.extract(n.Left).Union(x.extract(n.Right))
		case "=", "<", "<=", ">", ">=":
			return x.comparison(n.Op, n.Left, n.Right)
		}
		return x.open()

	case *parser.UnaryExpr:
		if n.Op == "NOT" {
			return x.negate(n.Expr)
		}
		return x.open()

	case *parser.FunctionCall:
		return x.call(n)
	}
	return x.open()
}

// negate computes the range of NOT e. De Morgan rewrites push the negation
// to the leaves before any interval is built, so inversion is only ever
// applied to a single atomic comparison, where it reduces to flipping the
// operator.
func (x extractor) negate(e parser.Expression) Range {
	switch n := e.(type) {
	case *parser.UnaryExpr:
		if n.Op == "NOT" {
			return x.extract(n.Expr)
		}
		return x.open()

	case *parser.BinaryExpr:
		switch n.Op {
		case "AND":
			return x.negate(n.Left).Union(x.negate(n.Right))
		case "OR":
			return x.negate(n.Left).Intersect(x.negate(n.Right))
		case "=":
			// Everything but one point is not a single interval.
			return x.open()
		case "!=", "<>":
			return x.comparison("=", n.Left, n.Right)
		case "<":
			return x.comparison(">=", n.Left, n.Right)
		case "<=":
			return x.comparison(">", n.Left, n.Right)
		case ">":
			return x.comparison("<=", n.Left, n.Right)
		case ">=":
			return x.comparison("<", n.Left, n.Right)
		}
		return x.open()
	}
	return x.open()
}

// comparison classifies the operands of one comparison. The key access may
// sit on either side; when it is on the right the operator direction is
// reversed first, so every recognized shape reduces to key OP constant.
func (x extractor) comparison(op string, left, right parser.Expression) Range {
	if x.isKeyAccess(left) {
		return x.keyVsConstant(op, right)
	}
	if x.isKeyAccess(right) {
		return x.keyVsConstant(reverse(op), left)
	}
	if call, ok := left.(*parser.FunctionCall); ok && foldsToZero(right) {
		return x.compareCall(op, call)
	}
	if call, ok := right.(*parser.FunctionCall); ok && foldsToZero(left) {
		return x.compareCall(reverse(op), call)
	}
	return x.open()
}

// keyVsConstant maps key OP constant onto an interval. Constants that do
// not fold, or that cannot be coerced into the key domain, widen to Open.
func (x extractor) keyVsConstant(op string, constExpr parser.Expression) Range {
	v, _, ok := FoldConstant(constExpr)
	if !ok {
		return x.open()
	}
	cv, ok := types.Coerce(x.dt, v)
	if !ok {
		return x.open()
	}
	switch op {
	case "=":
		return Range{DataType: x.dt, Lower: Include(cv), Upper: Include(cv)}
	case "<":
		return Range{DataType: x.dt, Upper: Exclude(cv)}
	case "<=":
		return Range{DataType: x.dt, Upper: Include(cv)}
	case ">":
		return Range{DataType: x.dt, Lower: Exclude(cv)}
	case ">=":
		return Range{DataType: x.dt, Lower: Include(cv)}
	}
	return x.open()
}

// compareCall handles the three-way compare idioms once the surrounding
// comparison is known to test against zero. compareTo(key, c) accepts the
// key only as its first argument; strcmp accepts either order, and putting
// the key second negates the sign, which flips the test once more.
func (x extractor) compareCall(op string, call *parser.FunctionCall) Range {
	switch call.Name {
	case "compareto":
		if len(call.Args) == 2 && x.isKeyAccess(call.Args[0]) {
			return x.keyVsConstant(op, call.Args[1])
		}
	case "strcmp":
		if !x.dt.IsOrderedText() || len(call.Args) != 2 {
			return x.open()
		}
		if x.isKeyAccess(call.Args[0]) {
			return x.keyVsConstant(op, call.Args[1])
		}
		if x.isKeyAccess(call.Args[1]) {
			return x.keyVsConstant(reverse(op), call.Args[0])
		}
	}
	return x.open()
}

// call handles the boolean-valued idioms that appear as bare atoms:
// equals(key, c) and startsWith(key, c), both ordered-text only.
func (x extractor) call(n *parser.FunctionCall) Range {
	if !x.dt.IsOrderedText() || len(n.Args) != 2 || !x.isKeyAccess(n.Args[0]) {
		return x.open()
	}
	v, dt, ok := FoldConstant(n.Args[1])
	if !ok || !dt.IsOrderedText() {
		return x.open()
	}
	s := v.(string)
	switch n.Name {
	case "equals":
		return Range{DataType: x.dt, Lower: Include(s), Upper: Include(s)}
	case "startswith":
		limit, err := PrefixLimit(x.dt, s)
		if err != nil {
			return x.open()
		}
		return Range{DataType: x.dt, Lower: Include(s), Upper: limit}
	}
	return x.open()
}

func (x extractor) isKeyAccess(e parser.Expression) bool {
	col, ok := e.(*parser.ColumnRef)
	return ok && col.Name == x.key
}

// reverse swaps a comparison's operand order: c OP key becomes key OP' c.
func reverse(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	}
	return op
}
