package engine

import (
	"fmt"
	"strings"

	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/types"
)

// evalScalarFunc evaluates a scalar function call for a single row.
func evalScalarFunc(fc *parser.FunctionCall, batch *Batch, row int) (types.Value, types.DataType, error) {
	name := strings.ToLower(fc.Name)

	args := make([]types.Value, len(fc.Args))
	argTypes := make([]types.DataType, len(fc.Args))
	for i, argExpr := range fc.Args {
		v, dt, err := EvalExpr(argExpr, batch, row)
		if err != nil {
			return nil, 0, fmt.Errorf("evaluating arg %d of %s: %w", i, name, err)
		}
		args[i] = v
		argTypes[i] = dt
	}

	switch name {
	case "equals":
		return scalarEquals(args, argTypes)
	case "compareto":
		return scalarCompareTo(args, argTypes)
	case "strcmp":
		return scalarStrcmp(args)
	case "startswith":
		return scalarStartsWith(args)
	case "lower":
		return scalarLower(args)
	case "upper":
		return scalarUpper(args)
	case "length":
		return scalarLength(args)
	case "tostring":
		return scalarToString(args)
	case "intdiv":
		return scalarIntDiv(args, argTypes)
	default:
		return nil, 0, fmt.Errorf("unknown scalar function: %s", name)
	}
}

// compareArgs orders two values: string pairs lexicographically, everything
// else after numeric promotion.
func compareArgs(a types.Value, aType types.DataType, b types.Value, bType types.DataType) (int, error) {
	if aType == types.TypeString && bType == types.TypeString {
		return strings.Compare(a.(string), b.(string)), nil
	}
	af, err := types.ToFloat64(aType, a)
	if err != nil {
		return 0, err
	}
	bf, err := types.ToFloat64(bType, b)
	if err != nil {
		return 0, err
	}
	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	}
	return 0, nil
}

func scalarEquals(args []types.Value, argTypes []types.DataType) (types.Value, types.DataType, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("equals requires 2 arguments, got %d", len(args))
	}
	cmp, err := compareArgs(args[0], argTypes[0], args[1], argTypes[1])
	if err != nil {
		return nil, 0, err
	}
	return boolToInt(cmp == 0), types.TypeInt64, nil
}

func scalarCompareTo(args []types.Value, argTypes []types.DataType) (types.Value, types.DataType, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("compareTo requires 2 arguments, got %d", len(args))
	}
	cmp, err := compareArgs(args[0], argTypes[0], args[1], argTypes[1])
	if err != nil {
		return nil, 0, err
	}
	return int64(cmp), types.TypeInt64, nil
}

func scalarStrcmp(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("strcmp requires 2 arguments, got %d", len(args))
	}
	a, aok := args[0].(string)
	b, bok := args[1].(string)
	if !aok || !bok {
		return nil, 0, fmt.Errorf("strcmp requires string arguments")
	}
	return int64(strings.Compare(a, b)), types.TypeInt64, nil
}

func scalarStartsWith(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("startsWith requires 2 arguments, got %d", len(args))
	}
	s, sok := args[0].(string)
	prefix, pok := args[1].(string)
	if !sok || !pok {
		return nil, 0, fmt.Errorf("startsWith requires string arguments")
	}
	return boolToInt(strings.HasPrefix(s, prefix)), types.TypeInt64, nil
}

func scalarLower(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 1 {
		return nil, 0, fmt.Errorf("lower requires 1 argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, 0, fmt.Errorf("lower requires a string argument")
	}
	return strings.ToLower(s), types.TypeString, nil
}

func scalarUpper(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 1 {
		return nil, 0, fmt.Errorf("upper requires 1 argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, 0, fmt.Errorf("upper requires a string argument")
	}
	return strings.ToUpper(s), types.TypeString, nil
}

func scalarLength(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 1 {
		return nil, 0, fmt.Errorf("length requires 1 argument, got %d", len(args))
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, 0, fmt.Errorf("length requires a string argument")
	}
	return uint64(len(s)), types.TypeUInt64, nil
}

func scalarToString(args []types.Value) (types.Value, types.DataType, error) {
	if len(args) != 1 {
		return nil, 0, fmt.Errorf("toString requires 1 argument, got %d", len(args))
	}
	return fmt.Sprintf("%v", args[0]), types.TypeString, nil
}

func scalarIntDiv(args []types.Value, argTypes []types.DataType) (types.Value, types.DataType, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("intDiv requires 2 arguments, got %d", len(args))
	}
	a, err := types.ToInt64(argTypes[0], args[0])
	if err != nil {
		return nil, 0, err
	}
	b, err := types.ToInt64(argTypes[1], args[1])
	if err != nil {
		return nil, 0, err
	}
	if b == 0 {
		return int64(0), types.TypeInt64, nil
	}
	return a / b, types.TypeInt64, nil
}
