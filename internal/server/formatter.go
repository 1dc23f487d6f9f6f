package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ordodb/ordo/internal/engine"
	"github.com/ordodb/ordo/internal/types"
)

// OutputFormat specifies the result format.
type OutputFormat string

const (
	FormatTSV    OutputFormat = "TSV"
	FormatCSV    OutputFormat = "CSV"
	FormatJSON   OutputFormat = "JSON"
	FormatPretty OutputFormat = "Pretty"
)

// ParseFormat parses a format string (case-insensitive). Unknown formats
// fall back to tab-separated.
func ParseFormat(s string) OutputFormat {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "pretty":
		return FormatPretty
	default:
		return FormatTSV
	}
}

// ContentType returns the MIME type for the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FormatResult writes a query result in the specified format.
func FormatResult(w io.Writer, result *engine.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return formatJSON(w, result)
	case FormatCSV:
		return formatCSV(w, result)
	case FormatPretty:
		return formatPretty(w, result)
	default:
		return formatTSV(w, result)
	}
}

func formatTSV(w io.Writer, result *engine.Result) error {
	if _, err := fmt.Fprintln(w, strings.Join(result.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range result.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = formatValue(colType(result, i), v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(vals, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func formatCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Columns); err != nil {
		return err
	}
	for _, row := range result.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = formatValue(colType(result, i), v)
		}
		if err := cw.Write(vals); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatJSON(w io.Writer, result *engine.Result) error {
	type columnMeta struct {
		Name string `json:"name"`
		Type string `json:"type,omitempty"`
	}
	type resultJSON struct {
		Meta []columnMeta             `json:"meta"`
		Data []map[string]interface{} `json:"data"`
		Rows int                      `json:"rows"`
	}

	out := resultJSON{Data: []map[string]interface{}{}}
	for i, name := range result.Columns {
		meta := columnMeta{Name: name}
		if i < len(result.Types) {
			meta.Type = result.Types[i].Name()
		}
		out.Meta = append(out.Meta, meta)
	}
	for _, row := range result.Rows {
		rowMap := make(map[string]interface{}, len(row))
		for i, name := range result.Columns {
			if i < len(row) {
				rowMap[name] = row[i]
			}
		}
		out.Data = append(out.Data, rowMap)
	}
	out.Rows = len(result.Rows)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatPretty(w io.Writer, result *engine.Result) error {
	widths := make([]int, len(result.Columns))
	for i, name := range result.Columns {
		widths[i] = len(name)
	}
	rendered := make([][]string, len(result.Rows))
	for r, row := range result.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = formatValue(colType(result, i), v)
			if i < len(widths) && len(vals[i]) > widths[i] {
				widths[i] = len(vals[i])
			}
		}
		rendered[r] = vals
	}

	writeLine := func(vals []string) error {
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = fmt.Sprintf("%-*s", widths[i], v)
		}
		line := strings.TrimRight(strings.Join(cells, " | "), " ")
		_, err := fmt.Fprintln(w, line)
		return err
	}

	if err := writeLine(result.Columns); err != nil {
		return err
	}
	seps := make([]string, len(widths))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, strings.Join(seps, "-+-")); err != nil {
		return err
	}
	for _, vals := range rendered {
		if err := writeLine(vals); err != nil {
			return err
		}
	}
	return nil
}

func colType(result *engine.Result, i int) types.DataType {
	if i < len(result.Types) {
		return result.Types[i]
	}
	return types.TypeString
}

func formatValue(dt types.DataType, v types.Value) string {
	if v == nil {
		return "NULL"
	}
	switch dt {
	case types.TypeFloat32:
		return fmt.Sprintf("%g", v.(float32))
	case types.TypeFloat64:
		return fmt.Sprintf("%g", v.(float64))
	default:
		return fmt.Sprintf("%v", v)
	}
}
