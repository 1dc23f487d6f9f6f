package engine

import (
	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// DefaultBatchSize is the number of rows per batch flowing between operators.
const DefaultBatchSize = 1024

// Batch is the unit of data operators exchange: rows sharing one column layout.
type Batch struct {
	Columns []string
	Types   []types.DataType
	Rows    []storage.Row
}

// NumRows returns the number of rows in the batch.
func (b *Batch) NumRows() int {
	return len(b.Rows)
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (b *Batch) ColumnIndex(name string) int {
	for i, c := range b.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
