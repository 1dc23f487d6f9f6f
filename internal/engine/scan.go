package engine

import (
	"log"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// ScanOperator reads the rows of a table whose keys fall inside a range and
// emits them as batches. The range is a bound, not the final answer: rows
// inside it still go through the WHERE filter.
type ScanOperator struct {
	table *storage.Table
	r     keyrange.Range

	columns  []string
	colTypes []types.DataType

	rows  []storage.Row
	stats *storage.ScanStats
	pos   int
}

func NewScanOperator(table *storage.Table, r keyrange.Range) *ScanOperator {
	colTypes := make([]types.DataType, len(table.Schema.Columns))
	for i, col := range table.Schema.Columns {
		colTypes[i] = col.DataType
	}
	return &ScanOperator{
		table:    table,
		r:        r,
		columns:  table.Schema.ColumnNames(),
		colTypes: colTypes,
	}
}

func (s *ScanOperator) Open() error {
	rows, stats, err := s.table.Scan(s.r)
	if err != nil {
		return err
	}
	s.rows = rows
	s.stats = stats
	s.pos = 0
	log.Printf("[scan] table %s: range %s selected %d/%d blocks, %d rows",
		s.table.Name, s.r.String(), stats.BlocksRead, stats.Blocks, len(rows))
	return nil
}

func (s *ScanOperator) Next() (*Batch, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	end := s.pos + DefaultBatchSize
	if end > len(s.rows) {
		end = len(s.rows)
	}
	batch := &Batch{Columns: s.columns, Types: s.colTypes, Rows: s.rows[s.pos:end]}
	s.pos = end
	return batch, nil
}

func (s *ScanOperator) Close() error {
	return nil
}

// Stats reports what Open read. Valid only after Open.
func (s *ScanOperator) Stats() *storage.ScanStats {
	return s.stats
}
