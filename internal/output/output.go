// Package output holds the strategies that turn a response body into the
// value handed back to callers.
package output

import (
	"encoding/json"
	"strings"

	"iexcloud/internal/fetcher"
	"iexcloud/internal/tabular"
)

// Format selects how category responses are returned.
type Format string

const (
	// FormatRaw returns the response body unmodified as json.RawMessage
	FormatRaw Format = "RAW"
	// FormatTable returns a *tabular.Table
	FormatTable Format = "TABLE"
)

// Producer produces a caller-facing value from a response body. field names
// the member holding the records, or is empty when the body itself holds them.
type Producer interface {
	Produce(body []byte, field string) (any, error)
}

// Raw returns the body as is. The field is ignored.
type Raw struct{}

// Produce implements Producer.
func (Raw) Produce(body []byte, _ string) (any, error) {
	if !json.Valid(body) {
		return nil, fetcher.NewDecodeError("response is not valid JSON", nil)
	}
	return json.RawMessage(append([]byte(nil), body...)), nil
}

// Table normalizes the body with tabular.Normalize.
type Table struct{}

// Produce implements Producer.
func (Table) Produce(body []byte, field string) (any, error) {
	table, err := tabular.Normalize(body, field)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ParseFormat converts s into a Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case FormatRaw, FormatTable:
		return f, nil
	default:
		return "", fetcher.NewInvalidArgumentError("output format should be one of %q, %q; got %q", FormatRaw, FormatTable, s)
	}
}

// For returns the Producer for f.
func For(f Format) (Producer, error) {
	switch f {
	case FormatRaw:
		return Raw{}, nil
	case FormatTable:
		return Table{}, nil
	default:
		return nil, fetcher.NewInvalidArgumentError("unsupported output format %q", f)
	}
}
