package engine

import (
	"fmt"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// Result holds the outcome of executing a statement: a row set for queries,
// a message for DDL.
type Result struct {
	Columns []string
	Types   []types.DataType
	Rows    []storage.Row
	Message string
}

// Execute runs a parsed statement against the database.
func Execute(stmt parser.Statement, db *storage.Database) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return executeCreate(s, db)
	case *parser.InsertStmt:
		return executeInsert(s, db)
	case *parser.SelectStmt:
		return executeSelect(s, db)
	case *parser.ExplainStmt:
		return executeExplain(s, db)
	case *parser.DropTableStmt:
		return executeDrop(s, db)
	case *parser.ShowTablesStmt:
		return executeShowTables(db)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func executeCreate(stmt *parser.CreateTableStmt, db *storage.Database) (*Result, error) {
	if stmt.IfNotExists {
		if _, exists := db.GetTable(stmt.TableName); exists {
			return &Result{Message: "OK"}, nil
		}
	}

	schema := storage.TableSchema{Key: stmt.Key}
	for _, col := range stmt.Columns {
		dt, err := types.ParseDataType(col.TypeName)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		schema.Columns = append(schema.Columns, storage.ColumnDef{Name: col.Name, DataType: dt})
	}

	if err := db.CreateTable(stmt.TableName, schema); err != nil {
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func executeInsert(stmt *parser.InsertStmt, db *storage.Database) (*Result, error) {
	table, ok := db.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s not found", stmt.TableName)
	}

	// Determine column order
	colNames := stmt.Columns
	if len(colNames) == 0 {
		colNames = table.Schema.ColumnNames()
	}
	if len(colNames) != len(table.Schema.Columns) {
		return nil, fmt.Errorf("INSERT must provide all %d columns of %s", len(table.Schema.Columns), stmt.TableName)
	}

	// Map the insert column order onto schema positions.
	positions := make([]int, len(colNames))
	for i, name := range colNames {
		idx := table.Schema.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %s not found in table %s", name, stmt.TableName)
		}
		positions[i] = idx
	}

	rows := make([]storage.Row, len(stmt.Values))
	for rowIdx, valueExprs := range stmt.Values {
		if len(valueExprs) != len(colNames) {
			return nil, fmt.Errorf("row %d: expected %d values, got %d", rowIdx, len(colNames), len(valueExprs))
		}
		row := make(storage.Row, len(table.Schema.Columns))
		for i, expr := range valueExprs {
			v, _, ok := keyrange.FoldConstant(expr)
			if !ok {
				return nil, fmt.Errorf("row %d, column %s: expected a constant value, got %s",
					rowIdx, colNames[i], parser.ExprToSQL(expr))
			}
			row[positions[i]] = v
		}
		rows[rowIdx] = row
	}

	if err := table.Insert(rows); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("OK. %d rows inserted.", len(stmt.Values))}, nil
}

func executeSelect(stmt *parser.SelectStmt, db *storage.Database) (*Result, error) {
	op, outNames, err := PlanSelect(stmt, db)
	if err != nil {
		return nil, err
	}

	if err := op.Open(); err != nil {
		return nil, err
	}
	defer op.Close()

	result := &Result{Columns: outNames}
	for {
		batch, err := op.Next()
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		if len(result.Types) == 0 {
			result.Columns = batch.Columns
			result.Types = batch.Types
		}
		result.Rows = append(result.Rows, batch.Rows...)
	}
	return result, nil
}

func executeDrop(stmt *parser.DropTableStmt, db *storage.Database) (*Result, error) {
	if err := db.DropTable(stmt.TableName); err != nil {
		if stmt.IfExists {
			return &Result{Message: "OK"}, nil
		}
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func executeShowTables(db *storage.Database) (*Result, error) {
	names := db.TableNames()
	rows := make([]storage.Row, len(names))
	for i, name := range names {
		rows[i] = storage.Row{name}
	}
	return &Result{
		Columns: []string{"name"},
		Types:   []types.DataType{types.TypeString},
		Rows:    rows,
	}, nil
}
