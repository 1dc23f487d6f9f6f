package engine

import (
	"fmt"
	"strings"

	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// executeExplain describes how a SELECT would run without executing it: the
// key range extracted from WHERE, how many segments and blocks the scan
// selects, and the operator chain.
func executeExplain(stmt *parser.ExplainStmt, db *storage.Database) (*Result, error) {
	sel := stmt.Select
	table, ok := db.GetTable(sel.From)
	if !ok {
		return nil, fmt.Errorf("table %s not found", sel.From)
	}

	r, err := ScanRange(sel, table)
	if err != nil {
		return nil, err
	}

	stats, err := table.PlanScan(r)
	if err != nil {
		return nil, err
	}

	chain := []string{fmt.Sprintf("Scan(%s)", sel.From)}
	if sel.Where != nil {
		chain = append(chain, "Filter")
	}
	chain = append(chain, "Project")
	if len(sel.OrderBy) > 0 {
		chain = append(chain, "Sort")
	}
	if sel.Limit != nil {
		chain = append(chain, "Limit")
	}

	lines := []string{
		fmt.Sprintf("key range: %s", r.String()),
		fmt.Sprintf("segments: %d/%d", stats.SegmentsRead, stats.Segments),
		fmt.Sprintf("blocks: %d/%d", stats.BlocksRead, stats.Blocks),
		fmt.Sprintf("plan: %s", strings.Join(chain, " -> ")),
	}

	rows := make([]storage.Row, len(lines))
	for i, line := range lines {
		rows[i] = storage.Row{line}
	}
	return &Result{
		Columns: []string{"explain"},
		Types:   []types.DataType{types.TypeString},
		Rows:    rows,
	}, nil
}
