// Package table holds the in-memory tabular representation passed between I/O adapters and the engine.
package table

import (
	"asset-reconciler/core/normalize"
)

// Record is a single row keyed by column name.
type Record map[string]any

// Table is an ordered collection of records with a declared column order.
type Table struct {
	Name    string
	Columns []string
	Rows    []Record
}

// New creates an empty table with the given columns.
func New(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether the column is declared.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a row. Unknown columns are registered in first-seen order.
func (t *Table) Append(r Record) {
	for k := range r {
		if !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
	}
	t.Rows = append(t.Rows, r)
}

// Column returns the raw values of a column in row order.
// Missing cells are returned as nil.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Strings returns the normalized values of a column in row order.
func (t *Table) Strings(name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = normalize.Value(r[name])
	}
	return out
}

// SetColumn replaces (or adds) a column with the given values.
// values must have one entry per row.
func (t *Table) SetColumn(name string, values []any) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for i, r := range t.Rows {
		if i < len(values) {
			r[name] = values[i]
		} else {
			r[name] = nil
		}
	}
}

// Rename renames columns according to the from -> to mapping.
// When a target name already exists it is overwritten.
func (t *Table) Rename(mapping map[string]string) {
	declared := make(map[string]string, len(mapping))
	for from, to := range mapping {
		if from != to && t.HasColumn(from) {
			declared[from] = to
		}
	}
	mapping = declared
	if len(mapping) == 0 {
		return
	}
	for _, r := range t.Rows {
		moved := make(map[string]any, len(mapping))
		for from, to := range mapping {
			moved[to] = r[from]
			delete(r, from)
		}
		for k, v := range moved {
			r[k] = v
		}
	}

	targets := make(map[string]struct{}, len(mapping))
	for _, to := range mapping {
		targets[to] = struct{}{}
	}
	cols := make([]string, 0, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		name := c
		if to, ok := mapping[c]; ok {
			name = to
		} else if _, clobbered := targets[c]; clobbered {
			// The column is replaced by a renamed one and keeps its position only via the rename.
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cols = append(cols, name)
	}
	t.Columns = cols
}

// Drop removes the named columns.
func (t *Table) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	cols := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			cols = append(cols, c)
		}
	}
	t.Columns = cols
	for _, r := range t.Rows {
		for n := range drop {
			delete(r, n)
		}
	}
}

// NormalizeColumns rewrites every column name through normalize.ColumnName.
// When two headers collapse to the same name the first one wins.
func (t *Table) NormalizeColumns() {
	mapping := make(map[string]string)
	seen := make(map[string]struct{}, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	var dropped []string
	for _, c := range t.Columns {
		n := normalize.ColumnName(c)
		if _, dup := seen[n]; dup {
			dropped = append(dropped, c)
			continue
		}
		seen[n] = struct{}{}
		cols = append(cols, n)
		if n != c {
			mapping[c] = n
		}
	}
	for _, r := range t.Rows {
		for _, d := range dropped {
			delete(r, d)
		}
		for from, to := range mapping {
			if v, ok := r[from]; ok {
				delete(r, from)
				r[to] = v
			}
		}
	}
	t.Columns = cols
}

// Clone returns a deep copy of the table structure. Cell values are shared.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...), Rows: make([]Record, len(t.Rows))}
	for i, r := range t.Rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}
