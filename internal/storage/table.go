package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ordodb/ordo/internal/compression"
	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

// Table is a key-ordered table backed by immutable segments. The mutex
// guards the segment set; segment contents never change after the rename,
// so block reads run without locks.
type Table struct {
	Name    string
	Schema  TableSchema
	DataDir string // path: <db_data_dir>/<table_name>/
	Codec   compression.Codec

	mu       sync.RWMutex
	segments []*Segment
}

// NewTable creates a table handle.
func NewTable(name string, schema TableSchema, dataDir string, codec compression.Codec) *Table {
	if codec == nil {
		codec = &compression.LZ4Codec{}
	}
	return &Table{
		Name:    name,
		Schema:  schema,
		DataDir: dataDir,
		Codec:   codec,
	}
}

// Insert validates and coerces rows against the schema, sorts them by key,
// and writes them as one new level 0 segment.
func (t *Table) Insert(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	coerced := make([]Row, len(rows))
	for i, row := range rows {
		c, err := t.coerceRow(row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		coerced[i] = c
	}

	keyIdx := t.Schema.KeyIndex()
	keyType := t.Schema.KeyType()
	sort.SliceStable(coerced, func(i, j int) bool {
		return types.CompareValues(keyType, coerced[i][keyIdx], coerced[j][keyIdx]) < 0
	})

	info, err := NewSegmentInfo(0)
	if err != nil {
		return err
	}
	writer := NewSegmentWriter(&t.Schema, t.DataDir, t.Codec)
	seg, err := writer.WriteSegment(coerced, info)
	if err != nil {
		return fmt.Errorf("writing segment: %w", err)
	}

	t.mu.Lock()
	t.segments = append(t.segments, seg)
	t.mu.Unlock()
	return nil
}

// coerceRow converts each value into its column's domain.
func (t *Table) coerceRow(row Row) (Row, error) {
	if len(row) != len(t.Schema.Columns) {
		return nil, fmt.Errorf("expected %d values, got %d", len(t.Schema.Columns), len(row))
	}
	out := make(Row, len(row))
	for i, c := range t.Schema.Columns {
		v, ok := types.Coerce(c.DataType, row[i])
		if !ok {
			return nil, fmt.Errorf("value %v does not fit column %s (%s)", row[i], c.Name, c.DataType.Name())
		}
		out[i] = v
	}
	return out, nil
}

// ScanStats reports how much of the table a scan touched.
type ScanStats struct {
	Segments     int // active segments
	SegmentsRead int
	Blocks       int // blocks across all active segments
	BlocksRead   int
	RowsRead     int
}

// Scan returns all rows whose key falls in r, merged across segments into
// key order. Rows with equal keys keep insertion order. Empty (crossed)
// ranges scan nothing.
func (t *Table) Scan(r keyrange.Range) ([]Row, *ScanStats, error) {
	segments := t.ActiveSegments()
	stats := &ScanStats{Segments: len(segments)}
	for _, seg := range segments {
		stats.Blocks += seg.NumBlocks
	}
	if r.IsEmpty() {
		return nil, stats, nil
	}

	runs := make([][]Row, 0, len(segments))
	for _, seg := range segments {
		reader, err := OpenSegmentReader(seg, &t.Schema)
		if err != nil {
			return nil, nil, fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
		}
		rows, blocksRead, err := reader.Scan(r)
		if err != nil {
			return nil, nil, fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
		}
		if blocksRead > 0 {
			stats.SegmentsRead++
		}
		stats.BlocksRead += blocksRead
		stats.RowsRead += len(rows)
		if len(rows) > 0 {
			runs = append(runs, rows)
		}
	}

	return mergeSortedRuns(t.Schema.KeyType(), t.Schema.KeyIndex(), runs), stats, nil
}

// PlanScan reports how many segments and blocks a scan of r would touch,
// without reading any data blocks.
func (t *Table) PlanScan(r keyrange.Range) (*ScanStats, error) {
	segments := t.ActiveSegments()
	stats := &ScanStats{Segments: len(segments)}
	for _, seg := range segments {
		stats.Blocks += seg.NumBlocks
		if r.IsEmpty() {
			continue
		}
		reader, err := OpenSegmentReader(seg, &t.Schema)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
		}
		begin, end := reader.Index().BlockRange(r)
		if end > begin {
			stats.SegmentsRead++
			stats.BlocksRead += end - begin
		}
	}
	return stats, nil
}

// NumRows returns the total row count across active segments.
func (t *Table) NumRows() uint64 {
	var n uint64
	for _, seg := range t.ActiveSegments() {
		n += seg.NumRows
	}
	return n
}

// ActiveSegments returns active segments ordered by identifier, oldest first.
func (t *Table) ActiveSegments() []*Segment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var active []*Segment
	for _, s := range t.segments {
		if s.State == SegmentActive {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Info.ID.String() < active[j].Info.ID.String()
	})
	return active
}

// ReplaceSegments atomically marks old segments outdated and registers the
// merged one. The caller removes the old directories afterwards.
func (t *Table) ReplaceSegments(old []*Segment, merged *Segment) {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldSet := make(map[string]bool, len(old))
	for _, s := range old {
		oldSet[s.Info.DirName()] = true
	}
	for _, s := range t.segments {
		if oldSet[s.Info.DirName()] {
			s.State = SegmentOutdated
		}
	}
	t.segments = append(t.segments, merged)
}

// AddSegment registers a segment directly (used during metadata loading).
func (t *Table) AddSegment(seg *Segment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments = append(t.segments, seg)
}
