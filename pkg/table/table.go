// Package table provides the tabular record sets exchanged with data providers
// and presentation consumers.
//
// Every input and output of the relocation engine is a small CSV table with a
// stable column set. This package owns:
//   - Schemas: the canonical column names (and accepted aliases) of each table
//   - Table: an in-memory record set with canonicalized headers
//   - LoadOrDefault: a loader that substitutes a typed empty table and reports it
//   - Cache: an explicit read-through cache keyed by file path
//   - Typed decoders/encoders for every row type
package table

import (
	"errors"
	"strings"
)

var (
	// ErrMissing indicates that a table file does not exist or is empty.
	ErrMissing = errors.New("table missing")

	// ErrMalformed indicates that a table file could not be parsed as CSV.
	ErrMalformed = errors.New("table malformed")

	// ErrSchema indicates that a table file lacks a required column.
	ErrSchema = errors.New("table schema mismatch")
)

// Column describes one column of a schema.
type Column struct {
	// Name is the canonical snake_case column name.
	Name string

	// Aliases are alternative header spellings accepted on load
	// (e.g. "Sales" for "sales_amount").
	Aliases []string

	// Required marks columns without which the table cannot be used.
	Required bool
}

// Schema describes the column set of a table. Column order is the order used
// when the table is written.
type Schema struct {
	// Name identifies the table in warnings and logs.
	Name string

	// Columns lists every known column.
	Columns []Column
}

// ColumnNames returns the canonical column names in schema order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// canonical maps a raw header onto the schema's canonical name.
// Unknown headers are returned normalized but otherwise untouched.
func (s Schema) canonical(header string) string {
	h := normalizeHeader(header)
	for _, c := range s.Columns {
		if h == c.Name {
			return c.Name
		}
		for _, a := range c.Aliases {
			if h == normalizeHeader(a) {
				return c.Name
			}
		}
	}
	return h
}

// Empty returns a table with the schema's header and no rows.
func (s Schema) Empty() *Table {
	return &Table{Name: s.Name, Header: s.ColumnNames()}
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// Table is an in-memory record set.
//
// Headers are canonicalized against the schema the table was loaded with, so
// decoders can address columns by canonical name regardless of the spelling
// used by the producing script.
type Table struct {
	// Name identifies the table (usually the schema name).
	Name string

	// Header holds the canonical column names.
	Header []string

	// Rows holds the raw cell values, one slice per record.
	Rows [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Index returns the position of a canonical column, or -1 if absent.
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries the given column.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// value returns the trimmed cell for a column index, "" when out of range.
func value(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// missingRequired returns the required schema columns absent from the table.
func (t *Table) missingRequired(s Schema) []string {
	var missing []string
	for _, c := range s.Columns {
		if c.Required && !t.Has(c.Name) {
			missing = append(missing, c.Name)
		}
	}
	return missing
}
