package models

import (
	"bytes"
	"encoding/json"
)

// Cell is one column value of a table row.
// Value holds the decoded JSON value (string, float64, bool, nil or nested).
type Cell struct {
	Column string
	Value  any

	raw string
}

// NewCell creates a cell from a decoded value
func NewCell(column string, value any) Cell {
	return Cell{Column: column, Value: value}
}

// Row is a flat table row that keeps the key order of the response
type Row []Cell

// Get returns the value stored under column
func (r Row) Get(column string) (any, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return nil, false
}

// MarshalJSON writes the row as an object, preserving key order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if c.raw != "" {
			buf.WriteString(c.raw)
			continue
		}
		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is an ordered sequence of rows. Columns follows the key order of
// the first row.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates a table from rows, deriving the columns from the first row
func NewTable(rows []Row) *Table {
	t := &Table{Rows: rows}
	if len(rows) > 0 {
		t.Columns = make([]string, 0, len(rows[0]))
		for _, c := range rows[0] {
			t.Columns = append(t.Columns, c.Column)
		}
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// MarshalJSON writes the table as an array of row objects
func (t Table) MarshalJSON() ([]byte, error) {
	if len(t.Rows) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Rows)
}
