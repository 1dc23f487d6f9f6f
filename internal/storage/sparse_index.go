package storage

import (
	"fmt"
	"io"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

// IndexEntry describes one block of a segment: the key of its first row,
// where the compressed block starts, its framed length, and its row count.
type IndexEntry struct {
	FirstKey types.Value
	Offset   uint64
	Length   uint32
	NumRows  uint32
}

// SparseIndex holds one entry per block plus the last key of the segment.
// It maps a key range to the contiguous block run that can contain it.
type SparseIndex struct {
	KeyType types.DataType
	Entries []IndexEntry
	LastKey types.Value
}

// NumBlocks returns the number of blocks covered by the index.
func (idx *SparseIndex) NumBlocks() int {
	return len(idx.Entries)
}

// blockCover returns the closed key interval block i can contain. The upper
// edge is the next block's first key, inclusive: duplicate keys may straddle
// a block boundary, so a half-open cover would lose rows.
func (idx *SparseIndex) blockCover(i int) keyrange.Range {
	upper := keyrange.Include(idx.LastKey)
	if i+1 < len(idx.Entries) {
		upper = keyrange.Include(idx.Entries[i+1].FirstKey)
	}
	return keyrange.Range{
		DataType: idx.KeyType,
		Lower:    keyrange.Include(idx.Entries[i].FirstKey),
		Upper:    upper,
	}
}

// BlockRange returns the block run [begin, end) whose covers intersect r.
// Covers are ordered by key, so the run is contiguous. Empty (crossed)
// ranges select no blocks.
func (idx *SparseIndex) BlockRange(r keyrange.Range) (int, int) {
	if len(idx.Entries) == 0 || r.IsEmpty() {
		return 0, 0
	}
	begin := len(idx.Entries)
	end := 0
	for i := range idx.Entries {
		if idx.blockCover(i).Intersect(r).IsEmpty() {
			continue
		}
		if i < begin {
			begin = i
		}
		end = i + 1
	}
	if begin >= end {
		return 0, 0
	}
	return begin, end
}

// WriteSparseIndex writes the index in binary form: the entry count, one
// entry per block, then the segment's last key.
func WriteSparseIndex(w io.Writer, idx *SparseIndex) error {
	if err := WriteVarUInt(w, uint64(len(idx.Entries))); err != nil {
		return err
	}
	for _, e := range idx.Entries {
		if err := EncodeValue(w, idx.KeyType, e.FirstKey); err != nil {
			return fmt.Errorf("encoding index key: %w", err)
		}
		if err := WriteVarUInt(w, e.Offset); err != nil {
			return err
		}
		if err := WriteVarUInt(w, uint64(e.Length)); err != nil {
			return err
		}
		if err := WriteVarUInt(w, uint64(e.NumRows)); err != nil {
			return err
		}
	}
	if len(idx.Entries) > 0 {
		if err := EncodeValue(w, idx.KeyType, idx.LastKey); err != nil {
			return fmt.Errorf("encoding index last key: %w", err)
		}
	}
	return nil
}

// ReadSparseIndex reads an index written by WriteSparseIndex.
func ReadSparseIndex(r io.Reader, keyType types.DataType) (*SparseIndex, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = newByteReaderWrapper(r)
	}

	n, err := ReadVarUInt(br)
	if err != nil {
		return nil, fmt.Errorf("reading index entry count: %w", err)
	}

	idx := &SparseIndex{KeyType: keyType, Entries: make([]IndexEntry, 0, n)}
	for i := uint64(0); i < n; i++ {
		key, err := DecodeValue(r, keyType)
		if err != nil {
			return nil, fmt.Errorf("decoding index key %d: %w", i, err)
		}
		offset, err := ReadVarUInt(br)
		if err != nil {
			return nil, err
		}
		length, err := ReadVarUInt(br)
		if err != nil {
			return nil, err
		}
		rows, err := ReadVarUInt(br)
		if err != nil {
			return nil, err
		}
		idx.Entries = append(idx.Entries, IndexEntry{
			FirstKey: key,
			Offset:   offset,
			Length:   uint32(length),
			NumRows:  uint32(rows),
		})
	}
	if n > 0 {
		last, err := DecodeValue(r, keyType)
		if err != nil {
			return nil, fmt.Errorf("decoding index last key: %w", err)
		}
		idx.LastKey = last
	}
	return idx, nil
}
