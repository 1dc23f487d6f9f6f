package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is the top-level AST node.
type Statement interface {
	statementNode()
}

// --- Statements ---

// CreateTableStmt represents CREATE TABLE ... KEY keycol.
type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	Columns     []ColumnDefNode
	Key         string // the designated key column
}

func (*CreateTableStmt) statementNode() {}

// ColumnDefNode defines a column in a CREATE TABLE.
type ColumnDefNode struct {
	Name     string
	TypeName string
}

// InsertStmt represents INSERT INTO ... VALUES ...
type InsertStmt struct {
	TableName string
	Columns   []string       // explicit column list, or nil for all
	Values    [][]Expression // list of row-value-lists
}

func (*InsertStmt) statementNode() {}

// SelectStmt represents SELECT.
type SelectStmt struct {
	Columns []SelectExpr
	From    string // table name
	Where   Expression
	OrderBy []OrderByExpr
	Limit   *int64
}

func (*SelectStmt) statementNode() {}

// SelectExpr represents a single item in the SELECT list.
type SelectExpr struct {
	Expr  Expression
	Alias string // AS alias, or empty
}

// OrderByExpr represents a single ORDER BY item.
type OrderByExpr struct {
	Column string
	Desc   bool
}

// ExplainStmt represents EXPLAIN SELECT ...
type ExplainStmt struct {
	Select *SelectStmt
}

func (*ExplainStmt) statementNode() {}

// DropTableStmt represents DROP TABLE.
type DropTableStmt struct {
	TableName string
	IfExists  bool
}

func (*DropTableStmt) statementNode() {}

// ShowTablesStmt represents SHOW TABLES.
type ShowTablesStmt struct{}

func (*ShowTablesStmt) statementNode() {}

// --- Expressions ---

// Expression is a node in an expression tree.
type Expression interface {
	exprNode()
}

// ColumnRef references a column by name.
type ColumnRef struct {
	Name string
}

func (*ColumnRef) exprNode() {}

// LiteralExpr is a literal value (int64, float64, or string).
type LiteralExpr struct {
	Value interface{} // int64, float64, or string
}

func (*LiteralExpr) exprNode() {}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    string // +, -, *, /, =, !=, <, >, <=, >=, AND, OR
	Left  Expression
	Right Expression
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr is a unary operation.
type UnaryExpr struct {
	Op   string // NOT, -
	Expr Expression
}

func (*UnaryExpr) exprNode() {}

// FunctionCall represents a function invocation. Method-call syntax
// (recv.name(args)) is desugared by the parser into a FunctionCall with the
// receiver as the first argument, so consumers see one shape.
type FunctionCall struct {
	Name string       // lower-cased: startswith, compareto, strcmp, equals, ...
	Args []Expression // arguments
}

func (*FunctionCall) exprNode() {}

// StarExpr represents * in SELECT *.
type StarExpr struct{}

func (*StarExpr) exprNode() {}

// ExprToSQL converts an Expression AST back to its query text representation.
func ExprToSQL(expr Expression) string {
	if expr == nil {
		return ""
	}
	switch e := expr.(type) {
	case *ColumnRef:
		return e.Name
	case *LiteralExpr:
		switch v := e.Value.(type) {
		case string:
			return "'" + strings.ReplaceAll(v, "'", "''") + "'"
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprintf("%v", v)
		}
	case *FunctionCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprToSQL(a)
		}
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	case *BinaryExpr:
		return ExprToSQL(e.Left) + " " + e.Op + " " + ExprToSQL(e.Right)
	case *UnaryExpr:
		return e.Op + " " + ExprToSQL(e.Expr)
	case *StarExpr:
		return "*"
	default:
		return "?"
	}
}
