package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ordodb/ordo/internal/compression"
	"github.com/ordodb/ordo/internal/types"
)

// SegmentWriter creates new segments on disk.
type SegmentWriter struct {
	schema  *TableSchema
	baseDir string // parent directory (table data dir)
	codec   compression.Codec
}

// NewSegmentWriter creates a new SegmentWriter.
func NewSegmentWriter(schema *TableSchema, baseDir string, codec compression.Codec) *SegmentWriter {
	return &SegmentWriter{
		schema:  schema,
		baseDir: baseDir,
		codec:   codec,
	}
}

// WriteSegment writes rows as a new segment directory. The rows must already
// be sorted by the key column. The segment is built under a tmp_ name and
// renamed into place once complete.
func (sw *SegmentWriter) WriteSegment(rows []Row, info SegmentInfo) (*Segment, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("segment %s: no rows", info.DirName())
	}

	tmpDir := filepath.Join(sw.baseDir, info.TmpDirName())
	finalDir := filepath.Join(sw.baseDir, info.DirName())

	if err := os.MkdirAll(tmpDir, 0755); err != nil {
		return nil, fmt.Errorf("creating tmp dir: %w", err)
	}

	// Clean up on failure
	success := false
	defer func() {
		if !success {
			os.RemoveAll(tmpDir)
		}
	}()

	idx, err := sw.writeData(tmpDir, rows)
	if err != nil {
		return nil, fmt.Errorf("writing data: %w", err)
	}

	if err := sw.writeIndex(tmpDir, idx); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	keyType := sw.schema.KeyType()
	createdAt := time.Now().UTC()
	meta := segmentMetaYAML{
		Rows:      uint64(len(rows)),
		Blocks:    len(idx.Entries),
		Level:     info.Level,
		CreatedAt: createdAt.Format(time.RFC3339),
		MinKey:    types.ValueToString(keyType, idx.Entries[0].FirstKey),
		MaxKey:    types.ValueToString(keyType, idx.LastKey),
	}
	if err := writeSegmentMeta(tmpDir, meta); err != nil {
		return nil, fmt.Errorf("writing meta: %w", err)
	}

	// Atomic rename from tmp to final
	if err := os.Rename(tmpDir, finalDir); err != nil {
		return nil, fmt.Errorf("renaming segment dir: %w", err)
	}
	success = true

	return &Segment{
		Info:      info,
		State:     SegmentActive,
		NumRows:   uint64(len(rows)),
		NumBlocks: len(idx.Entries),
		SizeBytes: segmentDirSize(finalDir),
		CreatedAt: createdAt,
		BasePath:  finalDir,
	}, nil
}

// segmentDirSize sums the file sizes in a segment directory.
func segmentDirSize(dir string) uint64 {
	var total uint64
	filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err == nil && !fi.IsDir() {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}

// writeData writes data.bin as compressed blocks of up to BlockSize rows and
// returns the sparse index describing them.
func (sw *SegmentWriter) writeData(dir string, rows []Row) (*SparseIndex, error) {
	f, err := os.Create(filepath.Join(dir, "data.bin"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keyIdx := sw.schema.KeyIndex()
	blockSize := sw.schema.EffectiveBlockSize()
	idx := &SparseIndex{KeyType: sw.schema.KeyType()}

	var offset uint64
	var buf bytes.Buffer
	for start := 0; start < len(rows); start += blockSize {
		end := start + blockSize
		if end > len(rows) {
			end = len(rows)
		}

		buf.Reset()
		for _, row := range rows[start:end] {
			if err := EncodeRow(&buf, sw.schema, row); err != nil {
				return nil, err
			}
		}

		block, err := compression.CompressBlock(sw.codec, buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("compressing block: %w", err)
		}
		if _, err := f.Write(block); err != nil {
			return nil, err
		}

		idx.Entries = append(idx.Entries, IndexEntry{
			FirstKey: rows[start][keyIdx],
			Offset:   offset,
			Length:   uint32(len(block)),
			NumRows:  uint32(end - start),
		})
		offset += uint64(len(block))
	}
	idx.LastKey = rows[len(rows)-1][keyIdx]

	return idx, nil
}

// writeIndex writes index.bin.
func (sw *SegmentWriter) writeIndex(dir string, idx *SparseIndex) error {
	f, err := os.Create(filepath.Join(dir, "index.bin"))
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteSparseIndex(f, idx)
}
