package calc

import "asset-reconciler/core/table"

// Derived is a side table of calculated reference values keyed by logical field name.
// Values are held apart from the reference table until MergeInto, so a calculated
// field never collides with a same-named original column while other fields are computed.
type Derived struct {
	order  []string
	values map[string][]any
}

// NewDerived returns an empty side table.
func NewDerived() *Derived {
	return &Derived{values: make(map[string][]any)}
}

// Set stores the values for field, one per reference row.
func (d *Derived) Set(field string, values []any) {
	if _, ok := d.values[field]; !ok {
		d.order = append(d.order, field)
	}
	d.values[field] = values
}

// Get returns the values for field.
func (d *Derived) Get(field string) ([]any, bool) {
	v, ok := d.values[field]
	return v, ok
}

// Has reports whether field was calculated.
func (d *Derived) Has(field string) bool {
	_, ok := d.values[field]
	return ok
}

// Fields returns calculated field names in insertion order.
func (d *Derived) Fields() []string {
	return append([]string(nil), d.order...)
}

// MergeInto writes every calculated column into t, replacing any column of the same name.
func (d *Derived) MergeInto(t *table.Table) {
	for _, f := range d.order {
		t.SetColumn(f, d.values[f])
	}
}
