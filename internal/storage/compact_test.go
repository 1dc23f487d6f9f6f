package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

func TestCompactMergesSegments(t *testing.T) {
	table := newTestTable(t, 3)

	require.NoError(t, table.Insert([]Row{
		{int64(10), "a", 0.0},
		{int64(30), "c", 0.0},
	}))
	require.NoError(t, table.Insert([]Row{
		{int64(20), "b", 0.0},
		{int64(40), "d", 0.0},
	}))
	old := table.ActiveSegments()
	require.Len(t, old, 2)

	merged, err := Compact(table)
	require.NoError(t, err)
	require.NotNil(t, merged)

	active := table.ActiveSegments()
	require.Len(t, active, 1)
	assert.Equal(t, merged.Info, active[0].Info)
	assert.Equal(t, uint32(1), merged.Info.Level)
	assert.Equal(t, uint64(4), merged.NumRows)

	rows, _, err := table.Scan(keyrange.Open(types.TypeInt64))
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40}, rowKeys(rows))

	// Old directories are gone.
	for _, seg := range old {
		_, err := os.Stat(seg.BasePath)
		assert.True(t, os.IsNotExist(err), "old segment dir %s should be removed", seg.Info.DirName())
	}
}

func TestCompactKeepsDuplicateKeyOrder(t *testing.T) {
	table := newTestTable(t, 3)

	require.NoError(t, table.Insert([]Row{{int64(5), "first", 0.0}}))
	require.NoError(t, table.Insert([]Row{{int64(5), "second", 0.0}}))
	require.NoError(t, table.Insert([]Row{{int64(5), "third", 0.0}}))

	_, err := Compact(table)
	require.NoError(t, err)

	rows, _, err := table.Scan(keyrange.Open(types.TypeInt64))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0][1])
	assert.Equal(t, "second", rows[1][1])
	assert.Equal(t, "third", rows[2][1])
}

func TestCompactSingleSegmentIsNoop(t *testing.T) {
	table := newTestTable(t, 3)
	require.NoError(t, table.Insert(testRows(3)))

	merged, err := Compact(table)
	require.NoError(t, err)
	assert.Nil(t, merged)
	assert.Len(t, table.ActiveSegments(), 1)
}

func TestCompactBumpsLevel(t *testing.T) {
	table := newTestTable(t, 3)

	require.NoError(t, table.Insert(testRows(2)))
	require.NoError(t, table.Insert(testRows(2)))
	_, err := Compact(table)
	require.NoError(t, err)

	require.NoError(t, table.Insert(testRows(2)))
	merged, err := Compact(table)
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.Equal(t, uint32(2), merged.Info.Level)
}

func TestBackgroundCompactorRun(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenDatabase(dir, nil)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("events", *testSchema(3)))

	table, ok := db.GetTable("events")
	require.True(t, ok)
	require.NoError(t, table.Insert(testRows(2)))
	require.NoError(t, table.Insert(testRows(2)))
	require.NoError(t, table.Insert(testRows(2)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bc := NewBackgroundCompactor(db, 10*time.Millisecond, 3)
	go bc.Run(ctx)

	require.Eventually(t, func() bool {
		return len(table.ActiveSegments()) == 1
	}, 2*time.Second, 10*time.Millisecond, "compactor should merge the segments")

	rows, _, err := table.Scan(keyrange.Open(types.TypeInt64))
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestBackgroundCompactorDefaults(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	bc := NewBackgroundCompactor(db, 0, 0)
	assert.Equal(t, 30*time.Second, bc.interval)
	assert.Equal(t, 2, bc.minSegments)
}
