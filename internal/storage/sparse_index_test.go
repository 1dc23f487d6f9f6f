package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

// testIndex covers four blocks with first keys 0, 30, 60, 90 and last key 95.
func testIndex() *SparseIndex {
	return &SparseIndex{
		KeyType: types.TypeInt64,
		Entries: []IndexEntry{
			{FirstKey: int64(0), Offset: 0, Length: 100, NumRows: 3},
			{FirstKey: int64(30), Offset: 100, Length: 100, NumRows: 3},
			{FirstKey: int64(60), Offset: 200, Length: 100, NumRows: 3},
			{FirstKey: int64(90), Offset: 300, Length: 60, NumRows: 2},
		},
		LastKey: int64(95),
	}
}

func TestBlockRange(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		name       string
		r          keyrange.Range
		begin, end int
	}{
		{"open selects all", keyrange.Open(types.TypeInt64), 0, 4},
		{"point inside one block", intScanRange(keyrange.Include(int64(45)), keyrange.Include(int64(45))), 1, 2},
		// 30 is both the upper edge of block 0's cover and block 1's first key.
		{"point on boundary", intScanRange(keyrange.Include(int64(30)), keyrange.Include(int64(30))), 0, 2},
		{"prefix of the segment", intScanRange(keyrange.Unbounded(), keyrange.Exclude(int64(10))), 0, 1},
		{"suffix of the segment", intScanRange(keyrange.Exclude(int64(60)), keyrange.Unbounded()), 2, 4},
		{"past the last key", intScanRange(keyrange.Exclude(int64(95)), keyrange.Unbounded()), 0, 0},
		{"before the first key", intScanRange(keyrange.Unbounded(), keyrange.Exclude(int64(0))), 0, 0},
		{"crossed selects nothing", intScanRange(keyrange.Include(int64(60)), keyrange.Include(int64(30))), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			begin, end := idx.BlockRange(tt.r)
			assert.Equal(t, tt.begin, begin, "begin")
			assert.Equal(t, tt.end, end, "end")
		})
	}
}

func TestBlockRangeEmptyIndex(t *testing.T) {
	idx := &SparseIndex{KeyType: types.TypeInt64}
	begin, end := idx.BlockRange(keyrange.Open(types.TypeInt64))
	assert.Equal(t, 0, begin)
	assert.Equal(t, 0, end)
}

func TestSparseIndexRoundTrip(t *testing.T) {
	idx := testIndex()

	var buf bytes.Buffer
	require.NoError(t, WriteSparseIndex(&buf, idx))

	got, err := ReadSparseIndex(bytes.NewReader(buf.Bytes()), types.TypeInt64)
	require.NoError(t, err)
	assert.Equal(t, idx.Entries, got.Entries)
	assert.Equal(t, idx.LastKey, got.LastKey)
}

func TestSparseIndexRoundTripStringKeys(t *testing.T) {
	idx := &SparseIndex{
		KeyType: types.TypeString,
		Entries: []IndexEntry{
			{FirstKey: "alpha", Offset: 0, Length: 64, NumRows: 2},
			{FirstKey: "delta", Offset: 64, Length: 72, NumRows: 2},
		},
		LastKey: "omega",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSparseIndex(&buf, idx))

	got, err := ReadSparseIndex(bytes.NewReader(buf.Bytes()), types.TypeString)
	require.NoError(t, err)
	assert.Equal(t, idx.Entries, got.Entries)
	assert.Equal(t, idx.LastKey, got.LastKey)
}
