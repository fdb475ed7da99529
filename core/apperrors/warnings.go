package apperrors

import (
	"fmt"
	"sort"
	"strings"
)

// WarningKind classifies a non-fatal condition collected during a run.
type WarningKind string

const (
	KindEmptyKey     WarningKind = "empty_key"
	KindNoCommonKeys WarningKind = "no_common_keys"
	KindFieldSkipped WarningKind = "field_skipped"
	KindRowCount     WarningKind = "row_count_mismatch"
)

// Warning is a non-fatal condition reported alongside the result.
type Warning interface {
	Kind() WarningKind
	Message() string
}

// EmptyKeyWarning counts rows whose composite key is blank in at least one component.
type EmptyKeyWarning struct {
	Table    string
	Count    int
	PerField map[string]int
}

func (w *EmptyKeyWarning) Kind() WarningKind { return KindEmptyKey }

func (w *EmptyKeyWarning) Message() string {
	fields := make([]string, 0, len(w.PerField))
	for f := range w.PerField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%d", f, w.PerField[f]))
	}
	return fmt.Sprintf("table %s has %d rows with empty primary key values (%s); they cannot be matched",
		w.Table, w.Count, strings.Join(parts, ", "))
}

// NoCommonKeysWarning means the two key sets do not intersect.
type NoCommonKeysWarning struct {
	PlatformKeys  int
	ReferenceKeys int
	KeyFields     []string
}

func (w *NoCommonKeysWarning) Kind() WarningKind { return KindNoCommonKeys }

func (w *NoCommonKeysWarning) Message() string {
	return fmt.Sprintf("no common primary keys between platform (%d keys) and reference (%d keys); check key fields [%s]",
		w.PlatformKeys, w.ReferenceKeys, strings.Join(w.KeyFields, ", "))
}

// FieldSkippedWarning reports a field left out of comparison, either because its calculated
// value could not be produced or because its column is missing after mapping.
type FieldSkippedWarning struct {
	Field string
	Err   error
}

func (w *FieldSkippedWarning) Kind() WarningKind { return KindFieldSkipped }

func (w *FieldSkippedWarning) Message() string {
	return fmt.Sprintf("field %s skipped: %v", w.Field, w.Err)
}

func (w *FieldSkippedWarning) Unwrap() error { return w.Err }
