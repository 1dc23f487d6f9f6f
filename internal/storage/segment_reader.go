package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ordodb/ordo/internal/compression"
	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

// SegmentReader reads rows from one segment.
type SegmentReader struct {
	seg    *Segment
	schema *TableSchema
	index  *SparseIndex
}

// OpenSegmentReader loads the segment's sparse index.
func OpenSegmentReader(seg *Segment, schema *TableSchema) (*SegmentReader, error) {
	data, err := os.ReadFile(filepath.Join(seg.BasePath, "index.bin"))
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	idx, err := ReadSparseIndex(bytes.NewReader(data), schema.KeyType())
	if err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	return &SegmentReader{seg: seg, schema: schema, index: idx}, nil
}

// Index returns the segment's sparse index.
func (sr *SegmentReader) Index() *SparseIndex {
	return sr.index
}

// Scan returns the segment's rows whose key falls in r, in key order, and
// the number of blocks read. Only the block run the sparse index selects is
// decompressed; leading rows below the lower bound are skipped and the scan
// stops at the first row past the upper bound.
func (sr *SegmentReader) Scan(r keyrange.Range) ([]Row, int, error) {
	begin, end := sr.index.BlockRange(r)
	if begin >= end {
		return nil, 0, nil
	}

	data, err := os.ReadFile(filepath.Join(sr.seg.BasePath, "data.bin"))
	if err != nil {
		return nil, 0, fmt.Errorf("reading data: %w", err)
	}

	keyIdx := sr.schema.KeyIndex()
	keyType := sr.schema.KeyType()

	var rows []Row
	for b := begin; b < end; b++ {
		entry := sr.index.Entries[b]
		blockEnd := entry.Offset + uint64(entry.Length)
		if blockEnd > uint64(len(data)) {
			return nil, 0, fmt.Errorf("block %d extends past data file", b)
		}

		decompressed, err := compression.DecompressBlock(data[entry.Offset:blockEnd])
		if err != nil {
			return nil, 0, fmt.Errorf("decompressing block %d: %w", b, err)
		}

		br := bytes.NewReader(decompressed)
		for i := uint32(0); i < entry.NumRows; i++ {
			row, err := DecodeRow(br, sr.schema)
			if err != nil {
				return nil, 0, fmt.Errorf("decoding block %d row %d: %w", b, i, err)
			}
			key := row[keyIdx]
			if keyBeforeRange(keyType, key, r) {
				continue
			}
			if keyAfterRange(keyType, key, r) {
				// Rows are sorted; nothing later can match.
				return rows, b - begin + 1, nil
			}
			rows = append(rows, row)
		}
	}

	return rows, end - begin, nil
}

// ReadAll returns every row in the segment in key order.
func (sr *SegmentReader) ReadAll() ([]Row, error) {
	rows, _, err := sr.Scan(keyrange.Open(sr.schema.KeyType()))
	return rows, err
}

// keyBeforeRange reports whether key sorts below the range's lower edge.
func keyBeforeRange(dt types.DataType, key types.Value, r keyrange.Range) bool {
	if r.Lower.IsUnbounded() {
		return false
	}
	c := types.CompareValues(dt, key, r.Lower.Value)
	return c < 0 || (c == 0 && !r.Lower.Inclusive)
}

// keyAfterRange reports whether key sorts above the range's upper edge.
func keyAfterRange(dt types.DataType, key types.Value, r keyrange.Range) bool {
	if r.Upper.IsUnbounded() {
		return false
	}
	c := types.CompareValues(dt, key, r.Upper.Value)
	return c > 0 || (c == 0 && !r.Upper.Inclusive)
}
