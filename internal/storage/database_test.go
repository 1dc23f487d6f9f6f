package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/types"
)

func TestCreateAndGetTable(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, db.CreateTable("events", *testSchema(0)))

	table, ok := db.GetTable("events")
	require.True(t, ok)
	assert.Equal(t, "events", table.Name)
	assert.Equal(t, "id", table.Schema.Key)

	_, ok = db.GetTable("missing")
	assert.False(t, ok)

	// schema.yaml is on disk.
	_, err = os.Stat(filepath.Join(db.DataDir, "events", "schema.yaml"))
	assert.NoError(t, err)
}

func TestCreateTableRejectsDuplicates(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, db.CreateTable("events", *testSchema(0)))
	err = db.CreateTable("events", *testSchema(0))
	assert.ErrorContains(t, err, "already exists")
}

func TestCreateTableValidatesSchema(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	schema := TableSchema{
		Columns: []ColumnDef{{Name: "a", DataType: types.TypeInt64}},
		Key:     "missing",
	}
	err = db.CreateTable("bad", schema)
	assert.ErrorContains(t, err, "key column")

	err = db.CreateTable("empty", TableSchema{Key: "k"})
	assert.Error(t, err)
}

func TestDropTable(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, db.CreateTable("events", *testSchema(0)))
	tableDir := filepath.Join(db.DataDir, "events")

	require.NoError(t, db.DropTable("events"))
	_, ok := db.GetTable("events")
	assert.False(t, ok)
	_, err = os.Stat(tableDir)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, db.DropTable("events"), "dropping twice")
}

func TestTableNamesSorted(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, db.CreateTable(name, *testSchema(0)))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, db.TableNames())
}

func TestOpenDatabaseReloadsState(t *testing.T) {
	dir := t.TempDir()

	db, err := OpenDatabase(dir, nil)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("events", *testSchema(3)))

	table, _ := db.GetTable("events")
	require.NoError(t, table.Insert(testRows(5)))
	require.NoError(t, table.Insert(testRows(2)))

	// A fresh handle over the same directory sees the same data.
	reopened, err := OpenDatabase(dir, nil)
	require.NoError(t, err)

	table2, ok := reopened.GetTable("events")
	require.True(t, ok)
	assert.Equal(t, types.TypeInt64, table2.Schema.KeyType())
	require.Len(t, table2.ActiveSegments(), 2)
	assert.Equal(t, uint64(7), table2.NumRows())

	rows, _, err := table2.Scan(keyrange.Open(types.TypeInt64))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 10, 10, 20, 30, 40}, rowKeys(rows))
}

func TestOpenDatabaseCleansTmpDirs(t *testing.T) {
	dir := t.TempDir()

	db, err := OpenDatabase(dir, nil)
	require.NoError(t, err)
	require.NoError(t, db.CreateTable("events", *testSchema(3)))

	// Simulate an interrupted segment write.
	tmp := filepath.Join(dir, "events", "tmp_leftover_0")
	require.NoError(t, os.MkdirAll(tmp, 0755))

	_, err = OpenDatabase(dir, nil)
	require.NoError(t, err)
	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}
