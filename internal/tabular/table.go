// Package tabular turns IEX Cloud JSON payloads into tables: one row per
// record, one column per record key, with key order preserved.
package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"iexcloud/internal/fetcher"
)

// Table is a normalized record set. Cells hold JSON values as decoded by
// encoding/json: float64, string, bool, nil, []any or map[string]any.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]any
}

func newTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in field order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Row returns the cells of row i aligned with Columns. A record that lacked a
// column has nil in that cell.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.columns))
	copy(row, t.rows[i])
	return row
}

// Value returns the cell at row i, column col. ok is false when the column
// does not exist or the row is out of range.
func (t *Table) Value(i int, col string) (v any, ok bool) {
	j, exists := t.index[col]
	if !exists || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	if j >= len(t.rows[i]) {
		return nil, true
	}
	return t.rows[i][j], true
}

// Column returns every value of col in row order.
func (t *Table) Column(col string) ([]any, bool) {
	j, exists := t.index[col]
	if !exists {
		return nil, false
	}
	values := make([]any, len(t.rows))
	for i, row := range t.rows {
		if j < len(row) {
			values[i] = row[j]
		}
	}
	return values, true
}

func (t *Table) addRecord(keys []string, values []any) {
	row := make([]any, len(t.columns), len(t.columns)+len(keys))
	for k, key := range keys {
		j, exists := t.index[key]
		if !exists {
			j = len(t.columns)
			t.index[key] = j
			t.columns = append(t.columns, key)
			row = append(row, nil)
		}
		row[j] = values[k]
	}
	t.rows = append(t.rows, row)
}

// Normalize parses body into a Table.
//
// When field is non-empty, body must be an object and the records are taken
// from that member; other members are dropped. A single object is treated as
// a one-record array, and null or an empty array yields an empty table with
// no columns. Columns follow the key order of the first record; keys first
// seen in later records are appended.
func Normalize(body []byte, field string) (*Table, error) {
	if field != "" {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fetcher.NewDecodeError("response is not a JSON object", err)
		}
		raw, ok := doc[field]
		if !ok {
			return nil, fetcher.NewDecodeError(fmt.Sprintf("field %q not found in response", field), nil)
		}
		body = raw
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	table := newTable()

	tok, err := dec.Token()
	if err != nil {
		return nil, fetcher.NewDecodeError("response is not valid JSON", err)
	}

	switch tok {
	case json.Delim('{'):
		keys, values, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		table.addRecord(keys, values)
	case json.Delim('['):
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fetcher.NewDecodeError("response is not valid JSON", err)
			}
			if tok != json.Delim('{') {
				return nil, fetcher.NewDecodeError(fmt.Sprintf("record %d is not a JSON object", table.Len()), nil)
			}
			keys, values, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			table.addRecord(keys, values)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fetcher.NewDecodeError("response is not valid JSON", err)
		}
	case nil:
	default:
		return nil, fetcher.NewDecodeError(fmt.Sprintf("expected a JSON object or array, got %v", tok), nil)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fetcher.NewDecodeError("unexpected data after JSON value", err)
	}

	return table, nil
}

// decodeObject reads the members of an object whose opening brace has
// already been consumed, keeping them in document order.
func decodeObject(dec *json.Decoder) ([]string, []any, error) {
	var (
		keys   []string
		values []any
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fetcher.NewDecodeError("response is not valid JSON", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fetcher.NewDecodeError(fmt.Sprintf("unexpected object key %v", tok), nil)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fetcher.NewDecodeError(fmt.Sprintf("invalid value for %q", key), err)
		}

		keys = append(keys, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fetcher.NewDecodeError("response is not valid JSON", err)
	}
	return keys, values, nil
}
