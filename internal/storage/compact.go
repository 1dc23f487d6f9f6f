package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ordodb/ordo/internal/types"
)

// Compact merges all active segments of a table into one segment at
// max(level)+1, swaps it in, and removes the old directories. Returns nil
// when the table has fewer than two segments.
func Compact(t *Table) (*Segment, error) {
	segments := t.ActiveSegments()
	if len(segments) < 2 {
		return nil, nil
	}

	var maxLevel uint32
	runs := make([][]Row, 0, len(segments))
	for _, seg := range segments {
		if seg.Info.Level > maxLevel {
			maxLevel = seg.Info.Level
		}
		reader, err := OpenSegmentReader(seg, &t.Schema)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
		}
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
		}
		runs = append(runs, rows)
	}

	merged := mergeSortedRuns(t.Schema.KeyType(), t.Schema.KeyIndex(), runs)

	info, err := NewSegmentInfo(maxLevel + 1)
	if err != nil {
		return nil, err
	}
	writer := NewSegmentWriter(&t.Schema, t.DataDir, t.Codec)
	seg, err := writer.WriteSegment(merged, info)
	if err != nil {
		return nil, fmt.Errorf("writing merged segment: %w", err)
	}

	t.ReplaceSegments(segments, seg)

	for _, old := range segments {
		if err := os.RemoveAll(old.BasePath); err != nil {
			log.Printf("[compact] removing %s: %v", old.Info.DirName(), err)
		}
	}

	return seg, nil
}

// mergeSortedRuns merges key-sorted row runs into one sorted slice. Ties take
// the earliest run first, which preserves insertion order across segments.
func mergeSortedRuns(keyType types.DataType, keyIdx int, runs [][]Row) []Row {
	switch len(runs) {
	case 0:
		return nil
	case 1:
		return runs[0]
	}

	total := 0
	for _, run := range runs {
		total += len(run)
	}
	out := make([]Row, 0, total)
	pos := make([]int, len(runs))

	for len(out) < total {
		best := -1
		for i, run := range runs {
			if pos[i] >= len(run) {
				continue
			}
			if best < 0 || types.CompareValues(keyType, run[pos[i]][keyIdx], runs[best][pos[best]][keyIdx]) < 0 {
				best = i
			}
		}
		out = append(out, runs[best][pos[best]])
		pos[best]++
	}
	return out
}

// BackgroundCompactor periodically merges tables that accumulated enough
// segments.
type BackgroundCompactor struct {
	db          *Database
	interval    time.Duration
	minSegments int
}

// NewBackgroundCompactor creates a compactor; interval defaults to 30s and
// minSegments to 2.
func NewBackgroundCompactor(db *Database, interval time.Duration, minSegments int) *BackgroundCompactor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if minSegments < 2 {
		minSegments = 2
	}
	return &BackgroundCompactor{
		db:          db,
		interval:    interval,
		minSegments: minSegments,
	}
}

// Run loops until the context is cancelled.
func (bc *BackgroundCompactor) Run(ctx context.Context) {
	ticker := time.NewTicker(bc.interval)
	defer ticker.Stop()

	log.Printf("[compact] background compactor started (interval=%s)", bc.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[compact] background compactor stopped")
			return
		case <-ticker.C:
			bc.compactOnce()
		}
	}
}

// compactOnce merges every table that reached the segment threshold.
func (bc *BackgroundCompactor) compactOnce() {
	for _, t := range bc.db.AllTables() {
		active := t.ActiveSegments()
		if len(active) < bc.minSegments {
			continue
		}
		seg, err := Compact(t)
		if err != nil {
			log.Printf("[compact] table %s: %v", t.Name, err)
			continue
		}
		if seg != nil {
			log.Printf("[compact] table %s: merged %d segments into %s (%d rows)",
				t.Name, len(active), seg.Info.DirName(), seg.NumRows)
		}
	}
}
