package engine

import (
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
)

// FilterOperator re-evaluates the WHERE expression on every row and keeps
// the matches. The scan range never replaces this step, so queries whose
// predicates the range extractor cannot tighten still return exact results.
type FilterOperator struct {
	input Operator
	expr  parser.Expression
}

func NewFilterOperator(input Operator, expr parser.Expression) *FilterOperator {
	return &FilterOperator{input: input, expr: expr}
}

func (f *FilterOperator) Open() error {
	return f.input.Open()
}

func (f *FilterOperator) Next() (*Batch, error) {
	for {
		batch, err := f.input.Next()
		if err != nil || batch == nil {
			return batch, err
		}

		var matching []storage.Row
		for i := range batch.Rows {
			v, _, err := EvalExpr(f.expr, batch, i)
			if err != nil {
				return nil, err
			}
			b, err := ToBool(v)
			if err != nil {
				return nil, err
			}
			if b {
				matching = append(matching, batch.Rows[i])
			}
		}
		if len(matching) == 0 {
			continue
		}
		return &Batch{Columns: batch.Columns, Types: batch.Types, Rows: matching}, nil
	}
}

func (f *FilterOperator) Close() error {
	return f.input.Close()
}
