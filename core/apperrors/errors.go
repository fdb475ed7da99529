package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrConfig         = errors.New("configuration error")
	ErrSchema         = errors.New("schema error")
	ErrKeyIntegrity   = errors.New("key integrity error")
	ErrFieldNotFound  = errors.New("field not found")
	ErrEvaluation     = errors.New("evaluation error")
	ErrUnsupportedExt = errors.New("unsupported file type")
)

// MaxExamples caps the number of sample keys carried by integrity errors and warnings.
const MaxExamples = 5

// ConfigError reports a rule book that cannot drive a run.
type ConfigError struct {
	Source string
	Sheet  string
	Reason string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config error")
	if e.Source != "" {
		fmt.Fprintf(&b, " in %s", e.Source)
	}
	if e.Sheet != "" {
		fmt.Fprintf(&b, " sheet %q", e.Sheet)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// SchemaError lists rule-declared fields absent from the input tables, keyed by table name.
type SchemaError struct {
	Missing map[string][]string
}

func (e *SchemaError) Error() string {
	tables := make([]string, 0, len(e.Missing))
	for t := range e.Missing {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, fmt.Sprintf("%s missing [%s]", t, strings.Join(e.Missing[t], ", ")))
	}
	return "schema error: " + strings.Join(parts, "; ")
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// KeyIntegrityError reports duplicate composite keys in one table.
type KeyIntegrityError struct {
	Table    string
	Fields   []string
	Count    int
	Examples []string
}

func (e *KeyIntegrityError) Error() string {
	return fmt.Sprintf("key integrity error: table %s has %d rows with duplicate primary key (%s), examples: %s",
		e.Table, e.Count, strings.Join(e.Fields, " + "), strings.Join(e.Examples, "; "))
}

func (e *KeyIntegrityError) Is(target error) bool { return target == ErrKeyIntegrity }

// FieldNotFoundError reports an expression that names columns the table does not have.
type FieldNotFoundError struct {
	Table      string
	Expression string
	Fields     []string
}

func (e *FieldNotFoundError) Error() string {
	msg := fmt.Sprintf("expression %q references unknown fields [%s]", e.Expression, strings.Join(e.Fields, ", "))
	if e.Table != "" {
		msg += " in table " + e.Table
	}
	return msg
}

func (e *FieldNotFoundError) Is(target error) bool { return target == ErrFieldNotFound }

// EvaluationError reports a malformed expression.
type EvaluationError struct {
	Expression string
	Reason     string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate expression %q: %s", e.Expression, e.Reason)
}

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

// IsFatal reports whether err must abort a reconciliation run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig) || errors.Is(err, ErrSchema) || errors.Is(err, ErrKeyIntegrity)
}
