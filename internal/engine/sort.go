package engine

import (
	"fmt"
	"sort"

	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/types"
)

// SortOperator sorts by the ORDER BY columns. It materializes all input
// batches first.
type SortOperator struct {
	input   Operator
	orderBy []parser.OrderByExpr

	done bool
}

func NewSortOperator(input Operator, orderBy []parser.OrderByExpr) *SortOperator {
	return &SortOperator{input: input, orderBy: orderBy}
}

func (s *SortOperator) Open() error {
	return s.input.Open()
}

func (s *SortOperator) Next() (*Batch, error) {
	if s.done {
		return nil, nil
	}
	s.done = true

	// Materialize all batches
	var all *Batch
	for {
		batch, err := s.input.Next()
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		if all == nil {
			all = &Batch{Columns: batch.Columns, Types: batch.Types}
		}
		all.Rows = append(all.Rows, batch.Rows...)
	}

	if all == nil || all.NumRows() == 0 {
		return nil, nil
	}

	type sortKey struct {
		idx  int
		dt   types.DataType
		desc bool
	}
	keys := make([]sortKey, len(s.orderBy))
	for i, ob := range s.orderBy {
		idx := all.ColumnIndex(ob.Column)
		if idx < 0 {
			return nil, fmt.Errorf("ORDER BY column %s not found in result", ob.Column)
		}
		keys[i] = sortKey{idx: idx, dt: all.Types[idx], desc: ob.Desc}
	}

	sort.SliceStable(all.Rows, func(a, b int) bool {
		for _, k := range keys {
			cmp := types.CompareValues(k.dt, all.Rows[a][k.idx], all.Rows[b][k.idx])
			if k.desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	return all, nil
}

func (s *SortOperator) Close() error {
	return s.input.Close()
}
