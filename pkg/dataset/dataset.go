// Package dataset provides the tabular dataset handle consumed by the
// engine, the schema profiler that describes it, and column-name matching
// used for prompt steering. File parsing lives in the loader; everything
// else treats a Dataset as an immutable snapshot.
package dataset

import (
	"fmt"
	"time"
)

// ColumnType is the inferred type of a column.
type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeString ColumnType = "string"
	TypeBool   ColumnType = "bool"
	TypeTime   ColumnType = "time"

	// TypeMixed marks columns whose sampled values disagree on type.
	TypeMixed ColumnType = "mixed"
)

// Column is one named column with its values in row order. Values are
// typed Go values: float64, string, bool, time.Time, or nil for missing
// cells.
type Column struct {
	Name   string
	Values []any
}

// Dataset is an in-memory tabular dataset with named, typed columns.
// All columns have the same length. A Dataset is treated as read-only
// once constructed.
type Dataset struct {
	Name    string
	columns []Column
	rows    int
}

// New constructs a Dataset from columns. All columns must have equal
// length; a dataset with zero columns is valid and has zero rows.
func New(name string, columns []Column) (*Dataset, error) {
	rows := 0
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("dataset: column %d has no name", i)
		}
		if i == 0 {
			rows = len(c.Values)
			continue
		}
		if len(c.Values) != rows {
			return nil, fmt.Errorf("dataset: column %q has %d values, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Dataset{Name: name, columns: columns, rows: rows}, nil
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return d.rows }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false if it does not exist.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Rows materializes the dataset as a slice of row maps keyed by column
// name. time.Time values are rendered as RFC 3339 strings so scripts see
// plain data. The result is a fresh copy; mutating it does not affect
// the dataset.
func (d *Dataset) Rows() []map[string]any {
	rows := make([]map[string]any, d.rows)
	for i := range rows {
		row := make(map[string]any, len(d.columns))
		for _, c := range d.columns {
			v := c.Values[i]
			if t, ok := v.(time.Time); ok {
				v = t.Format(time.RFC3339)
			}
			row[c.Name] = v
		}
		rows[i] = row
	}
	return rows
}
