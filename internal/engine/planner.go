package engine

import (
	"fmt"
	"log"

	"github.com/ordodb/ordo/internal/keyrange"
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
)

// PlanSelect converts a SELECT AST into an operator tree.
// Returns the root operator and the output column names.
func PlanSelect(stmt *parser.SelectStmt, db *storage.Database) (Operator, []string, error) {
	table, ok := db.GetTable(stmt.From)
	if !ok {
		return nil, nil, fmt.Errorf("table %s not found", stmt.From)
	}

	if err := checkColumnRefs(stmt, table); err != nil {
		return nil, nil, err
	}

	r, err := ScanRange(stmt, table)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[planner] %s: key=%s range=%s", parser.SelectToSQL(stmt), table.Schema.Key, r.String())

	// Build operator chain bottom-up

	// 1. Table scan bounded by the extracted key range
	var op Operator = NewScanOperator(table, r)

	// 2. Filter (WHERE)
	if stmt.Where != nil {
		op = NewFilterOperator(op, stmt.Where)
	}

	// 3. Projection (SELECT columns)
	op = NewProjectionOperator(op, stmt.Columns)

	// Determine output names
	outNames := make([]string, len(stmt.Columns))
	for i, se := range stmt.Columns {
		if se.Alias != "" {
			outNames[i] = se.Alias
		} else if _, ok := se.Expr.(*parser.StarExpr); ok {
			return wrapSortLimit(op, stmt, table.Schema.ColumnNames())
		} else {
			outNames[i] = ExprName(se.Expr)
		}
	}

	return wrapSortLimit(op, stmt, outNames)
}

func wrapSortLimit(op Operator, stmt *parser.SelectStmt, outNames []string) (Operator, []string, error) {
	// Sort (ORDER BY)
	if len(stmt.OrderBy) > 0 {
		op = NewSortOperator(op, stmt.OrderBy)
	}

	// Limit
	if stmt.Limit != nil {
		op = NewLimitOperator(op, *stmt.Limit)
	}

	return op, outNames, nil
}

// ScanRange derives the key range bounding a SELECT's scan. Without a WHERE
// clause the scan is unbounded.
func ScanRange(stmt *parser.SelectStmt, table *storage.Table) (keyrange.Range, error) {
	keyType := table.Schema.KeyType()
	if stmt.Where == nil {
		return keyrange.Open(keyType), nil
	}
	return keyrange.Extract(stmt.Where, table.Schema.Key, keyType)
}

// checkColumnRefs rejects SELECT and WHERE expressions naming columns the
// table does not have. ORDER BY is checked later against the projected
// output, where aliases are visible.
func checkColumnRefs(stmt *parser.SelectStmt, table *storage.Table) error {
	var refs []string
	for _, se := range stmt.Columns {
		refs = append(refs, ExprReferencesColumns(se.Expr)...)
	}
	refs = append(refs, ExprReferencesColumns(stmt.Where)...)

	for _, name := range refs {
		if table.Schema.ColumnIndex(name) < 0 {
			return fmt.Errorf("column %s not found in table %s", name, table.Name)
		}
	}
	return nil
}
