package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// FormatValue renders a cell for text or CSV output. Numbers use the
// shortest exact representation, nil renders empty and nested values as JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func (t *Table) record(i int) []string {
	row := t.Row(i)
	cells := make([]string, len(row))
	for j, v := range row {
		cells[j] = FormatValue(v)
	}
	return cells
}

// WriteCSV writes the header and every row to w in CSV format.
// A table without columns writes nothing.
func (t *Table) WriteCSV(w io.Writer) error {
	if len(t.columns) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range t.rows {
		if err := cw.Write(t.record(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}

// WriteText writes the table as aligned columns with a dashed header rule.
// maxRows limits the rows written; 0 means all.
func (t *Table) WriteText(w io.Writer, maxRows int) error {
	if len(t.columns) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rule := make([]string, len(t.columns))
	for j, c := range t.columns {
		rule[j] = strings.Repeat("-", len(c))
	}

	fmt.Fprintln(tw, strings.Join(t.columns, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for i := range t.rows {
		if maxRows > 0 && i >= maxRows {
			break
		}
		fmt.Fprintln(tw, strings.Join(t.record(i), "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}
