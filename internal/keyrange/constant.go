package keyrange

import (
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/types"
)

// FoldConstant evaluates an expression subtree that does not depend on any
// row: no column references, no function calls. Literals fold to
// themselves, unary minus negates, and the four arithmetic operators fold
// numerically; integer arithmetic stays integral, division always goes
// through float64. The boolean result reports whether folding applied.
// False means "not a constant here" and the caller widens to the open
// range; it is never an error.
func FoldConstant(e parser.Expression) (types.Value, types.DataType, bool) {
	switch n := e.(type) {
	case *parser.LiteralExpr:
		switch v := n.Value.(type) {
		case int64:
			return v, types.TypeInt64, true
		case float64:
			return v, types.TypeFloat64, true
		case string:
			return v, types.TypeString, true
		}
		return nil, 0, false

	case *parser.UnaryExpr:
		if n.Op != "-" {
			return nil, 0, false
		}
		v, dt, ok := FoldConstant(n.Expr)
		if !ok {
			return nil, 0, false
		}
		switch dt {
		case types.TypeInt64:
			return -v.(int64), types.TypeInt64, true
		case types.TypeFloat64:
			return -v.(float64), types.TypeFloat64, true
		}
		return nil, 0, false

	case *parser.BinaryExpr:
		return foldArith(n)
	}
	return nil, 0, false
}

func foldArith(n *parser.BinaryExpr) (types.Value, types.DataType, bool) {
	switch n.Op {
	case "+", "-", "*", "/":
	default:
		return nil, 0, false
	}
	lv, ldt, ok := FoldConstant(n.Left)
	if !ok {
		return nil, 0, false
	}
	rv, rdt, ok := FoldConstant(n.Right)
	if !ok {
		return nil, 0, false
	}
	if ldt == types.TypeString || rdt == types.TypeString {
		return nil, 0, false
	}

	if n.Op != "/" && ldt == types.TypeInt64 && rdt == types.TypeInt64 {
		a, b := lv.(int64), rv.(int64)
		switch n.Op {
		case "+":
			return a + b, types.TypeInt64, true
		case "-":
			return a - b, types.TypeInt64, true
		case "*":
			return a * b, types.TypeInt64, true
		}
	}

	a, err := types.ToFloat64(ldt, lv)
	if err != nil {
		return nil, 0, false
	}
	b, err := types.ToFloat64(rdt, rv)
	if err != nil {
		return nil, 0, false
	}
	switch n.Op {
	case "+":
		return a + b, types.TypeFloat64, true
	case "-":
		return a - b, types.TypeFloat64, true
	case "*":
		return a * b, types.TypeFloat64, true
	case "/":
		if b == 0 {
			return nil, 0, false
		}
		return a / b, types.TypeFloat64, true
	}
	return nil, 0, false
}

// foldsToZero reports whether the subtree folds to the integer constant 0,
// the comparand shape the compare idioms require.
func foldsToZero(e parser.Expression) bool {
	v, dt, ok := FoldConstant(e)
	return ok && dt == types.TypeInt64 && v.(int64) == 0
}
