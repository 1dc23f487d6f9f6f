package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordodb/ordo/internal/parser"
)

func parseQuery(t *testing.T, query string) parser.Statement {
	t.Helper()
	stmt, err := parser.ParseQuery(query)
	require.NoError(t, err, "query: %s", query)
	return stmt
}

func TestParseCreateTable(t *testing.T) {
	stmt := parseQuery(t, "CREATE TABLE events (id Int64, name String) KEY id")
	create, ok := stmt.(*parser.CreateTableStmt)
	require.True(t, ok)

	assert.Equal(t, "events", create.TableName)
	assert.False(t, create.IfNotExists)
	require.Len(t, create.Columns, 2)
	assert.Equal(t, parser.ColumnDefNode{Name: "id", TypeName: "Int64"}, create.Columns[0])
	assert.Equal(t, parser.ColumnDefNode{Name: "name", TypeName: "String"}, create.Columns[1])
	assert.Equal(t, "id", create.Key)
}

func TestParseCreateTableIfNotExists(t *testing.T) {
	stmt := parseQuery(t, "create table if not exists t (k String) key (k)")
	create, ok := stmt.(*parser.CreateTableStmt)
	require.True(t, ok)

	assert.True(t, create.IfNotExists)
	assert.Equal(t, "k", create.Key)
}

func TestParseInsert(t *testing.T) {
	stmt := parseQuery(t, "INSERT INTO events VALUES (1, 'alice'), (2, 'bob')")
	ins, ok := stmt.(*parser.InsertStmt)
	require.True(t, ok)

	assert.Equal(t, "events", ins.TableName)
	assert.Nil(t, ins.Columns)
	require.Len(t, ins.Values, 2)
	require.Len(t, ins.Values[0], 2)
	assert.Equal(t, &parser.LiteralExpr{Value: int64(1)}, ins.Values[0][0])
	assert.Equal(t, &parser.LiteralExpr{Value: "alice"}, ins.Values[0][1])
}

func TestParseInsertColumnList(t *testing.T) {
	stmt := parseQuery(t, "INSERT INTO events (name, id) VALUES ('alice', 2 + 3)")
	ins, ok := stmt.(*parser.InsertStmt)
	require.True(t, ok)

	assert.Equal(t, []string{"name", "id"}, ins.Columns)
	require.Len(t, ins.Values, 1)
	sum, ok := ins.Values[0][1].(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)
}

func TestParseSelect(t *testing.T) {
	stmt := parseQuery(t, "SELECT id, value * 2 AS doubled FROM events WHERE id >= 2 AND id < 5 ORDER BY id DESC, name LIMIT 3")
	sel, ok := stmt.(*parser.SelectStmt)
	require.True(t, ok)

	require.Len(t, sel.Columns, 2)
	assert.Equal(t, &parser.ColumnRef{Name: "id"}, sel.Columns[0].Expr)
	assert.Equal(t, "doubled", sel.Columns[1].Alias)

	assert.Equal(t, "events", sel.From)

	where, ok := sel.Where.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "AND", where.Op)

	require.Len(t, sel.OrderBy, 2)
	assert.Equal(t, parser.OrderByExpr{Column: "id", Desc: true}, sel.OrderBy[0])
	assert.Equal(t, parser.OrderByExpr{Column: "name", Desc: false}, sel.OrderBy[1])

	require.NotNil(t, sel.Limit)
	assert.Equal(t, int64(3), *sel.Limit)
}

func TestParseSelectStar(t *testing.T) {
	sel, ok := parseQuery(t, "SELECT * FROM events").(*parser.SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Columns, 1)

	_, isStar := sel.Columns[0].Expr.(*parser.StarExpr)
	assert.True(t, isStar)
	assert.Equal(t, "events", sel.From)
}

func TestParseAliasWithoutAS(t *testing.T) {
	sel, ok := parseQuery(t, "SELECT value * 2 d FROM events").(*parser.SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Columns, 1)
	assert.Equal(t, "d", sel.Columns[0].Alias)
}

func TestParseMethodCallSugar(t *testing.T) {
	sel, ok := parseQuery(t, "SELECT name FROM users WHERE name.startsWith('al')").(*parser.SelectStmt)
	require.True(t, ok)

	fc, ok := sel.Where.(*parser.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "startswith", fc.Name)
	require.Len(t, fc.Args, 2)
	assert.Equal(t, &parser.ColumnRef{Name: "name"}, fc.Args[0])
	assert.Equal(t, &parser.LiteralExpr{Value: "al"}, fc.Args[1])
}

func TestParseMethodCallOnLiteral(t *testing.T) {
	expr, err := parser.ParseExpression("'abc'.compareTo(name) > 0")
	require.NoError(t, err)

	cmp, ok := expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ">", cmp.Op)

	fc, ok := cmp.Left.(*parser.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "compareto", fc.Name)
	require.Len(t, fc.Args, 2)
	assert.Equal(t, &parser.LiteralExpr{Value: "abc"}, fc.Args[0])
	assert.Equal(t, &parser.ColumnRef{Name: "name"}, fc.Args[1])
}

func TestParseFreeFunctionCall(t *testing.T) {
	expr, err := parser.ParseExpression("strcmp(name, 'bob') = 0")
	require.NoError(t, err)

	cmp, ok := expr.(*parser.BinaryExpr)
	require.True(t, ok)

	fc, ok := cmp.Left.(*parser.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "strcmp", fc.Name)
	require.Len(t, fc.Args, 2)
}

func TestParseExplain(t *testing.T) {
	stmt := parseQuery(t, "EXPLAIN SELECT * FROM events WHERE id = 3")
	ex, ok := stmt.(*parser.ExplainStmt)
	require.True(t, ok)
	require.NotNil(t, ex.Select)
	assert.Equal(t, "events", ex.Select.From)
	assert.NotNil(t, ex.Select.Where)
}

func TestParseDropAndShow(t *testing.T) {
	drop, ok := parseQuery(t, "DROP TABLE events").(*parser.DropTableStmt)
	require.True(t, ok)
	assert.Equal(t, "events", drop.TableName)
	assert.False(t, drop.IfExists)

	drop, ok = parseQuery(t, "DROP TABLE IF EXISTS events").(*parser.DropTableStmt)
	require.True(t, ok)
	assert.True(t, drop.IfExists)

	_, ok = parseQuery(t, "SHOW TABLES").(*parser.ShowTablesStmt)
	assert.True(t, ok)
}

func TestParseNegativeNumber(t *testing.T) {
	expr, err := parser.ParseExpression("-5")
	require.NoError(t, err)
	assert.Equal(t, &parser.LiteralExpr{Value: int64(-5)}, expr)

	expr, err = parser.ParseExpression("-1.5 * 2")
	require.NoError(t, err)
	mul, ok := expr.(*parser.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", mul.Op)
	assert.Equal(t, &parser.LiteralExpr{Value: -1.5}, mul.Left)
}

func TestParseLineComment(t *testing.T) {
	sel, ok := parseQuery(t, "SELECT id -- trailing comment\nFROM events").(*parser.SelectStmt)
	require.True(t, ok)
	assert.Equal(t, "events", sel.From)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"misspelled keyword", "SELEC * FROM x"},
		{"missing key clause", "CREATE TABLE t (id Int64)"},
		{"missing values", "INSERT INTO t"},
		{"missing table name", "SELECT * FROM"},
		{"unterminated string", "SELECT 'oops"},
		{"bare where", "WHERE id = 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.ParseQuery(tc.query)
			require.Error(t, err)
		})
	}
}

func TestParseExpressionRejectsTrailingTokens(t *testing.T) {
	_, err := parser.ParseExpression("id > 2 garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token after expression")
}

func TestSelectToSQL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"select id, name from events",
			"SELECT id, name FROM events",
		},
		{
			"SELECT * FROM events LIMIT 10",
			"SELECT * FROM events LIMIT 10",
		},
		{
			"SELECT value * 2 AS d FROM events WHERE id >= 2 AND id < 5 ORDER BY id DESC, name LIMIT 3",
			"SELECT value * 2 AS d FROM events WHERE id >= 2 AND id < 5 ORDER BY id DESC, name LIMIT 3",
		},
		{
			"SELECT name FROM users WHERE name.startsWith('al')",
			"SELECT name FROM users WHERE startswith(name, 'al')",
		},
		{
			"SELECT name FROM users WHERE name = 'o''brien'",
			"SELECT name FROM users WHERE name = 'o''brien'",
		},
	}

	for _, tc := range cases {
		stmt, err := parser.ParseQuery(tc.in)
		require.NoError(t, err, tc.in)
		sel, ok := stmt.(*parser.SelectStmt)
		require.True(t, ok, tc.in)
		assert.Equal(t, tc.want, parser.SelectToSQL(sel), tc.in)
	}
}
