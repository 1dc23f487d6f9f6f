package engine

import (
	"fmt"

	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// ProjectionOperator computes the SELECT expressions for each input row.
type ProjectionOperator struct {
	input      Operator
	selectExpr []parser.SelectExpr
}

func NewProjectionOperator(input Operator, selectExpr []parser.SelectExpr) *ProjectionOperator {
	return &ProjectionOperator{
		input:      input,
		selectExpr: selectExpr,
	}
}

func (p *ProjectionOperator) Open() error {
	return p.input.Open()
}

func (p *ProjectionOperator) Next() (*Batch, error) {
	batch, err := p.input.Next()
	if err != nil || batch == nil {
		return batch, err
	}

	// Handle SELECT *
	if len(p.selectExpr) == 1 {
		if _, ok := p.selectExpr[0].Expr.(*parser.StarExpr); ok {
			return batch, nil
		}
	}

	outNames := make([]string, len(p.selectExpr))
	outTypes := make([]types.DataType, len(p.selectExpr))
	for i, se := range p.selectExpr {
		if _, ok := se.Expr.(*parser.StarExpr); ok {
			return nil, fmt.Errorf("* must be the only select expression")
		}
		outName := se.Alias
		if outName == "" {
			outName = ExprName(se.Expr)
		}
		outNames[i] = outName
	}

	outRows := make([]storage.Row, len(batch.Rows))
	for row := range batch.Rows {
		out := make(storage.Row, len(p.selectExpr))
		for i, se := range p.selectExpr {
			v, dt, err := EvalExpr(se.Expr, batch, row)
			if err != nil {
				return nil, err
			}
			out[i] = v
			outTypes[i] = dt
		}
		outRows[row] = out
	}

	return &Batch{Columns: outNames, Types: outTypes, Rows: outRows}, nil
}

func (p *ProjectionOperator) Close() error {
	return p.input.Close()
}

// ExprName returns a default name for an expression.
func ExprName(e parser.Expression) string {
	switch expr := e.(type) {
	case *parser.ColumnRef:
		return expr.Name
	case *parser.FunctionCall:
		if len(expr.Args) > 0 {
			return fmt.Sprintf("%s(%s)", expr.Name, ExprName(expr.Args[0]))
		}
		return expr.Name + "()"
	case *parser.StarExpr:
		return "*"
	default:
		return "expr"
	}
}
