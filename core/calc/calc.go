package calc

import (
	"regexp"
	"strconv"
	"strings"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/normalize"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"

	"github.com/shopspring/decimal"
)

// Kind is the form of a calculation expression.
type Kind int

const (
	// Substring takes the first N characters of one field: "Field[:N]".
	Substring Kind = iota
	// Concat joins text fields in order: "A+B+C".
	Concat
	// Arithmetic evaluates + - * / over numeric fields and literals.
	Arithmetic
)

func (k Kind) String() string {
	switch k {
	case Substring:
		return "substring"
	case Concat:
		return "concat"
	default:
		return "arithmetic"
	}
}

// DefaultDepreciationTokens mark numeric fields whose sign is not significant.
var DefaultDepreciationTokens = []string{"折旧", "depreciation"}

// Options tunes expression evaluation.
type Options struct {
	// DepreciationTokens lists name fragments that make a numeric field absolute before use.
	DepreciationTokens []string
}

func (o Options) tokens() []string {
	if o.DepreciationTokens == nil {
		return DefaultDepreciationTokens
	}
	return o.DepreciationTokens
}

var substringForm = regexp.MustCompile(`^(.+?)\[\s*:\s*(\d+)\s*\]$`)

// Expression is a compiled calculation rule.
type Expression struct {
	Source string
	Kind   Kind

	fields []string
	length int
	root   node
	opts   Options
}

// Compile parses expr for the given data type. Substring syntax is recognised for
// every type; otherwise numeric rules are arithmetic and text or date rules concatenate.
func Compile(expr string, dt rules.DataType, opts Options) (*Expression, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, &apperrors.EvaluationError{Expression: expr, Reason: "empty expression"}
	}
	e := &Expression{Source: src, opts: opts}

	if m := substringForm.FindStringSubmatch(src); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, &apperrors.EvaluationError{Expression: src, Reason: "invalid substring length"}
		}
		e.Kind = Substring
		e.fields = []string{strings.TrimSpace(m[1])}
		e.length = n
		return e, nil
	}

	if dt == rules.Numeric {
		root, fields, err := parseArithmetic(src)
		if err != nil {
			return nil, &apperrors.EvaluationError{Expression: src, Reason: err.Error()}
		}
		e.Kind = Arithmetic
		e.root = root
		e.fields = fields
		return e, nil
	}

	e.Kind = Concat
	for _, part := range strings.Split(src, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &apperrors.EvaluationError{Expression: src, Reason: "empty operand in concatenation"}
		}
		e.fields = append(e.fields, part)
	}
	return e, nil
}

// Fields returns the column names the expression reads, in first-use order.
func (e *Expression) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Check returns a FieldNotFoundError when t lacks any referenced column.
func (e *Expression) Check(t *table.Table) error {
	var missing []string
	for _, f := range e.fields {
		if !t.HasColumn(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &apperrors.FieldNotFoundError{Table: t.Name, Expression: e.Source, Fields: missing}
	}
	return nil
}

// Eval computes the expression for every row of t. Columns are read once each.
func (e *Expression) Eval(t *table.Table) ([]any, error) {
	if err := e.Check(t); err != nil {
		return nil, err
	}
	out := make([]any, t.Len())

	switch e.Kind {
	case Substring:
		col := t.Strings(e.fields[0])
		for i, v := range col {
			out[i] = normalize.Prefix(v, e.length)
		}
	case Concat:
		cols := make([][]string, len(e.fields))
		for j, f := range e.fields {
			cols[j] = t.Strings(f)
		}
		var b strings.Builder
		for i := range out {
			b.Reset()
			for j := range cols {
				b.WriteString(cols[j][i])
			}
			out[i] = b.String()
		}
	case Arithmetic:
		cols := make(map[string][]decimal.Decimal, len(e.fields))
		for _, f := range e.fields {
			cols[f] = e.numericColumn(t, f)
		}
		for i := range out {
			row := i
			v, ok := e.root.eval(func(name string) decimal.Decimal { return cols[name][row] })
			if ok {
				out[i] = v
			}
		}
	}
	return out, nil
}

// EvalRecord computes the expression for a single row.
func (e *Expression) EvalRecord(r table.Record) (any, error) {
	var missing []string
	for _, f := range e.fields {
		if _, ok := r[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.FieldNotFoundError{Expression: e.Source, Fields: missing}
	}

	switch e.Kind {
	case Substring:
		return normalize.Prefix(normalize.Value(r[e.fields[0]]), e.length), nil
	case Concat:
		var b strings.Builder
		for _, f := range e.fields {
			b.WriteString(normalize.Value(r[f]))
		}
		return b.String(), nil
	default:
		v, ok := e.root.eval(func(name string) decimal.Decimal { return e.coerce(name, r[name]) })
		if !ok {
			return nil, nil
		}
		return v, nil
	}
}

func (e *Expression) numericColumn(t *table.Table, name string) []decimal.Decimal {
	raw := t.Column(name)
	out := make([]decimal.Decimal, len(raw))
	for i, v := range raw {
		out[i] = e.coerce(name, v)
	}
	return out
}

// coerce converts a cell to a number: non-numeric cells count as zero, and
// depreciation fields are made absolute.
func (e *Expression) coerce(name string, v any) decimal.Decimal {
	d, ok := normalize.Decimal(v)
	if !ok {
		return decimal.Zero
	}
	if normalize.HasToken(name, e.opts.tokens()) {
		return d.Abs()
	}
	return d
}

// Evaluate compiles and evaluates expr over t in one step.
func Evaluate(t *table.Table, expr string, dt rules.DataType, opts Options) ([]any, error) {
	e, err := Compile(expr, dt, opts)
	if err != nil {
		return nil, err
	}
	return e.Eval(t)
}
