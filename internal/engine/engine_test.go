package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordodb/ordo/internal/engine"
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
)

func setupTestDB(t *testing.T) *storage.Database {
	t.Helper()
	db, err := storage.OpenDatabase(t.TempDir(), nil)
	require.NoError(t, err)
	return db
}

func execQuery(t *testing.T, db *storage.Database, query string) *engine.Result {
	t.Helper()
	stmt, err := parser.ParseQuery(query)
	require.NoError(t, err, "parse %q", query)
	result, err := engine.Execute(stmt, db)
	require.NoError(t, err, "execute %q", query)
	return result
}

func execQueryErr(t *testing.T, db *storage.Database, query string) error {
	t.Helper()
	stmt, err := parser.ParseQuery(query)
	require.NoError(t, err, "parse %q", query)
	_, err = engine.Execute(stmt, db)
	require.Error(t, err, "execute %q", query)
	return err
}

// column extracts one output column as a plain slice.
func column(result *engine.Result, name string) []interface{} {
	idx := -1
	for i, c := range result.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 || len(result.Rows) == 0 {
		return nil
	}
	out := make([]interface{}, len(result.Rows))
	for i, row := range result.Rows {
		out[i] = row[idx]
	}
	return out
}

func setupEvents(t *testing.T) *storage.Database {
	t.Helper()
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE events (id Int64, name String, value Int64) KEY id`)
	execQuery(t, db, `INSERT INTO events VALUES (1, 'a', 100), (2, 'b', 200), (3, 'c', 300), (4, 'd', 400), (5, 'e', 500)`)
	return db
}

func TestCreateAndInsert(t *testing.T) {
	db := setupTestDB(t)

	result := execQuery(t, db, `CREATE TABLE test (id Int64, name String) KEY id`)
	require.Equal(t, "OK", result.Message)

	result = execQuery(t, db, `INSERT INTO test VALUES (1, 'alice'), (2, 'bob'), (3, 'charlie')`)
	require.Equal(t, "OK. 3 rows inserted.", result.Message)

	result = execQuery(t, db, `SELECT * FROM test`)
	require.Equal(t, []string{"id", "name"}, result.Columns)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, storage.Row{int64(1), "alice"}, result.Rows[0])
}

func TestCreateTableIfNotExists(t *testing.T) {
	db := setupTestDB(t)

	execQuery(t, db, `CREATE TABLE test (id Int64) KEY id`)
	err := execQueryErr(t, db, `CREATE TABLE test (id Int64) KEY id`)
	assert.Contains(t, err.Error(), "already exists")

	result := execQuery(t, db, `CREATE TABLE IF NOT EXISTS test (id Int64) KEY id`)
	assert.Equal(t, "OK", result.Message)
}

func TestInsertColumnOrder(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE test (id Int64, name String) KEY id`)
	execQuery(t, db, `INSERT INTO test (name, id) VALUES ('alice', 7)`)

	result := execQuery(t, db, `SELECT * FROM test`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, storage.Row{int64(7), "alice"}, result.Rows[0])
}

func TestInsertFoldsConstantExpressions(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE test (id Int64, value Float64) KEY id`)
	execQuery(t, db, `INSERT INTO test VALUES (2 + 3, -1.5 * 2)`)

	result := execQuery(t, db, `SELECT * FROM test`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, storage.Row{int64(5), float64(-3)}, result.Rows[0])
}

func TestInsertRejectsNonConstant(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE test (id Int64, name String) KEY id`)

	err := execQueryErr(t, db, `INSERT INTO test VALUES (id, 'x')`)
	assert.Contains(t, err.Error(), "expected a constant value")
}

func TestSelectWhereKeyRange(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id FROM events WHERE id > 2`)
	assert.Equal(t, []interface{}{int64(3), int64(4), int64(5)}, column(result, "id"))

	result = execQuery(t, db, `SELECT id FROM events WHERE id >= 2 AND id < 4`)
	assert.Equal(t, []interface{}{int64(2), int64(3)}, column(result, "id"))
}

func TestSelectWhereOrRefilters(t *testing.T) {
	db := setupEvents(t)

	// The scan range for this WHERE is the single interval [2, 4], which
	// also covers id=3. The filter must drop it.
	result := execQuery(t, db, `SELECT id FROM events WHERE id = 2 OR id = 4`)
	assert.Equal(t, []interface{}{int64(2), int64(4)}, column(result, "id"))
}

func TestSelectWhereNonKeyColumn(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id, value FROM events WHERE value = 300`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, storage.Row{int64(3), int64(300)}, result.Rows[0])
}

func TestSelectWhereContradiction(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id FROM events WHERE id = 2 AND id = 4`)
	assert.Empty(t, result.Rows)
}

func TestSelectWhereNegation(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id FROM events WHERE NOT (id < 4)`)
	assert.Equal(t, []interface{}{int64(4), int64(5)}, column(result, "id"))
}

func TestSelectStringIdioms(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE users (name String, age Int64) KEY name`)
	execQuery(t, db, `INSERT INTO users VALUES ('abby', 20), ('alice', 30), ('bob', 25)`)

	result := execQuery(t, db, `SELECT name FROM users WHERE name.startsWith('a')`)
	assert.Equal(t, []interface{}{"abby", "alice"}, column(result, "name"))

	result = execQuery(t, db, `SELECT name FROM users WHERE name.compareTo('b') < 0`)
	assert.Equal(t, []interface{}{"abby", "alice"}, column(result, "name"))

	result = execQuery(t, db, `SELECT name FROM users WHERE strcmp(name, 'b') >= 0`)
	assert.Equal(t, []interface{}{"bob"}, column(result, "name"))

	result = execQuery(t, db, `SELECT name, age FROM users WHERE name.equals('alice')`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, storage.Row{"alice", int64(30)}, result.Rows[0])
}

func TestSelectProjectionExpressions(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id, value * 2 AS doubled FROM events WHERE id <= 2`)
	require.Equal(t, []string{"id", "doubled"}, result.Columns)
	assert.Equal(t, []interface{}{float64(200), float64(400)}, column(result, "doubled"))

	result = execQuery(t, db, `SELECT upper(name) FROM events WHERE id = 1`)
	require.Equal(t, []string{"upper(name)"}, result.Columns)
	assert.Equal(t, []interface{}{"A"}, column(result, "upper(name)"))
}

func TestSelectOrderByDesc(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id FROM events ORDER BY id DESC LIMIT 3`)
	assert.Equal(t, []interface{}{int64(5), int64(4), int64(3)}, column(result, "id"))
}

func TestSelectOrderByMultipleColumns(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE points (id Int64, grp String, score Int64) KEY id`)
	execQuery(t, db, `INSERT INTO points VALUES (1, 'b', 10), (2, 'a', 20), (3, 'a', 10), (4, 'b', 5)`)

	result := execQuery(t, db, `SELECT grp, score, id FROM points ORDER BY grp, score DESC`)
	assert.Equal(t, []interface{}{"a", "a", "b", "b"}, column(result, "grp"))
	assert.Equal(t, []interface{}{int64(20), int64(10), int64(10), int64(5)}, column(result, "score"))
}

func TestSelectOrderByAlias(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT value * 2 AS d FROM events ORDER BY d DESC LIMIT 2`)
	assert.Equal(t, []interface{}{float64(1000), float64(800)}, column(result, "d"))
}

func TestSelectLimit(t *testing.T) {
	db := setupEvents(t)

	result := execQuery(t, db, `SELECT id FROM events LIMIT 2`)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, column(result, "id"))

	result = execQuery(t, db, `SELECT id FROM events LIMIT 0`)
	assert.Empty(t, result.Rows)
}

func TestSelectAcrossSegments(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE test (id Int64, tag String) KEY id`)
	execQuery(t, db, `INSERT INTO test VALUES (10, 'x'), (30, 'first-30')`)
	execQuery(t, db, `INSERT INTO test VALUES (20, 'y'), (30, 'second-30')`)

	result := execQuery(t, db, `SELECT id, tag FROM test`)
	assert.Equal(t, []interface{}{int64(10), int64(20), int64(30), int64(30)}, column(result, "id"))
	// Rows with equal keys come back in insertion order.
	assert.Equal(t, []interface{}{"x", "y", "first-30", "second-30"}, column(result, "tag"))
}

func TestSelectUnknownColumn(t *testing.T) {
	db := setupEvents(t)

	err := execQueryErr(t, db, `SELECT nope FROM events`)
	assert.Contains(t, err.Error(), "column nope not found")

	err = execQueryErr(t, db, `SELECT id FROM events WHERE nope = 1`)
	assert.Contains(t, err.Error(), "column nope not found")

	err = execQueryErr(t, db, `SELECT id FROM events ORDER BY nope`)
	assert.Contains(t, err.Error(), "ORDER BY column nope")
}

func TestSelectUnknownTable(t *testing.T) {
	db := setupTestDB(t)
	err := execQueryErr(t, db, `SELECT * FROM missing`)
	assert.Contains(t, err.Error(), "table missing not found")
}

func TestShowAndDropTables(t *testing.T) {
	db := setupTestDB(t)
	execQuery(t, db, `CREATE TABLE bbb (id Int64) KEY id`)
	execQuery(t, db, `CREATE TABLE aaa (id Int64) KEY id`)

	result := execQuery(t, db, `SHOW TABLES`)
	require.Equal(t, []string{"name"}, result.Columns)
	assert.Equal(t, []interface{}{"aaa", "bbb"}, column(result, "name"))

	execQuery(t, db, `DROP TABLE aaa`)
	result = execQuery(t, db, `SHOW TABLES`)
	assert.Equal(t, []interface{}{"bbb"}, column(result, "name"))

	err := execQueryErr(t, db, `DROP TABLE aaa`)
	assert.Contains(t, err.Error(), "does not exist")

	result = execQuery(t, db, `DROP TABLE IF EXISTS aaa`)
	assert.Equal(t, "OK", result.Message)
}
