package keys

import (
	"sort"
	"strings"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/calc"
	"asset-reconciler/core/normalize"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"
)

const (
	// encodeSep joins key parts internally. It cannot appear in normalized spreadsheet text.
	encodeSep = "\x1f"
	// DisplaySep joins key parts for reports.
	DisplaySep = " + "
)

// Key is a composite primary key: one normalized value per key rule.
type Key []string

// Encode returns the unambiguous form used for set operations.
func (k Key) Encode() string {
	return strings.Join(k, encodeSep)
}

// String returns the display form, e.g. "1000 + A1".
func (k Key) String() string {
	return strings.Join(k, DisplaySep)
}

// Empty reports whether any component is blank.
func (k Key) Empty() bool {
	if len(k) == 0 {
		return true
	}
	for _, p := range k {
		if p == "" {
			return true
		}
	}
	return false
}

// Decode splits an encoded key.
func Decode(s string) Key {
	return Key(strings.Split(s, encodeSep))
}

// Display converts an encoded key to its display form.
func Display(encoded string) string {
	return strings.ReplaceAll(encoded, encodeSep, DisplaySep)
}

// Builder builds composite keys for both tables from the key rules.
type Builder struct {
	rules []rules.Rule
	exprs []*calc.Expression
}

// NewBuilder compiles the reference-side calculation of each key rule once.
func NewBuilder(keyRules []rules.Rule, opts calc.Options) (*Builder, error) {
	if len(keyRules) == 0 {
		return nil, &apperrors.ConfigError{Reason: "no primary key rule declared"}
	}
	b := &Builder{rules: keyRules, exprs: make([]*calc.Expression, len(keyRules))}
	for i, r := range keyRules {
		if !r.HasCalc() {
			continue
		}
		e, err := calc.Compile(r.CalcExpression, r.DataType, opts)
		if err != nil {
			return nil, err
		}
		b.exprs[i] = e
	}
	return b, nil
}

// Fields returns the platform names of the key fields.
func (b *Builder) Fields() []string {
	out := make([]string, len(b.rules))
	for i, r := range b.rules {
		out[i] = r.SourceField
	}
	return out
}

// BuildKey builds the key of one row. Platform rows read the source fields directly.
// Reference rows use the key rule's calculation when present and the target field otherwise.
func (b *Builder) BuildKey(row table.Record, isReference bool) (Key, error) {
	k := make(Key, len(b.rules))
	for i, r := range b.rules {
		if !isReference {
			k[i] = normalize.Value(row[r.SourceField])
			continue
		}
		if e := b.exprs[i]; e != nil {
			v, err := e.EvalRecord(row)
			if err != nil {
				return nil, err
			}
			k[i] = normalize.Value(v)
			continue
		}
		k[i] = normalize.Value(row[r.TargetField])
	}
	return k, nil
}

// BuildAll builds the keys of every row of a table whose key columns already carry
// platform names, as the engine produces after mapping.
func (b *Builder) BuildAll(t *table.Table) []Key {
	cols := make([][]string, len(b.rules))
	for i, r := range b.rules {
		cols[i] = t.Strings(r.SourceField)
	}
	out := make([]Key, t.Len())
	for row := range out {
		k := make(Key, len(cols))
		for i := range cols {
			k[i] = cols[i][row]
		}
		out[row] = k
	}
	return out
}

// Report is the outcome of key validation for one table.
type Report struct {
	Table string
	// Index maps each non-empty encoded key to its row position.
	Index map[string]int
	// Keys lists the non-empty encoded keys in row order.
	Keys []string
	// EmptyRows lists row positions with an empty key component.
	EmptyRows []int
	// Warning is set when EmptyRows is not empty.
	Warning *apperrors.EmptyKeyWarning
}

// Validate checks the keys of one table. It fails with SchemaError when a key column
// is absent and with KeyIntegrityError when a non-empty key occurs more than once.
// Empty keys are not fatal; they are reported in the Warning and left out of Index.
func Validate(t *table.Table, fields []string, ks []Key) (*Report, error) {
	if len(fields) == 0 {
		return nil, &apperrors.ConfigError{Reason: "no primary key rule declared"}
	}
	var missing []string
	for _, f := range fields {
		if !t.HasColumn(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.SchemaError{Missing: map[string][]string{t.Name: missing}}
	}

	rep := &Report{Table: t.Name, Index: make(map[string]int, len(ks))}
	counts := make(map[string]int, len(ks))
	var order []string
	perField := make(map[string]int)

	for i, k := range ks {
		if k.Empty() {
			rep.EmptyRows = append(rep.EmptyRows, i)
			for j, p := range k {
				if p == "" && j < len(fields) {
					perField[fields[j]]++
				}
			}
			continue
		}
		enc := k.Encode()
		if counts[enc] == 0 {
			order = append(order, enc)
			rep.Index[enc] = i
			rep.Keys = append(rep.Keys, enc)
		}
		counts[enc]++
	}

	dupRows := 0
	var examples []string
	for _, enc := range order {
		if n := counts[enc]; n > 1 {
			dupRows += n
			if len(examples) < apperrors.MaxExamples {
				examples = append(examples, Display(enc))
			}
		}
	}
	if dupRows > 0 {
		return nil, &apperrors.KeyIntegrityError{Table: t.Name, Fields: fields, Count: dupRows, Examples: examples}
	}

	if len(rep.EmptyRows) > 0 {
		rep.Warning = &apperrors.EmptyKeyWarning{Table: t.Name, Count: len(rep.EmptyRows), PerField: perField}
	}
	return rep, nil
}

// Partition is the result of matching two key sets.
type Partition struct {
	OnlyInA []string
	OnlyInB []string
	Common  []string
}

// Resolve splits two key collections into keys only in a, only in b, and in both.
// Each output is sorted.
func Resolve(a, b []string) Partition {
	inA := make(map[string]struct{}, len(a))
	for _, k := range a {
		inA[k] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b))
	for _, k := range b {
		inB[k] = struct{}{}
	}

	var p Partition
	for k := range inA {
		if _, ok := inB[k]; ok {
			p.Common = append(p.Common, k)
		} else {
			p.OnlyInA = append(p.OnlyInA, k)
		}
	}
	for k := range inB {
		if _, ok := inA[k]; !ok {
			p.OnlyInB = append(p.OnlyInB, k)
		}
	}
	sort.Strings(p.OnlyInA)
	sort.Strings(p.OnlyInB)
	sort.Strings(p.Common)
	return p
}
