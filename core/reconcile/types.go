package reconcile

import (
	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/compare"
	"asset-reconciler/core/table"
)

// Side names used for tables, staging and reports.
const (
	SidePlatform  = "platform"
	SideReference = "reference"
)

// Summary provides aggregate counts for a run.
type Summary struct {
	// PlatformRows and ReferenceRows are the input row counts.
	PlatformRows  int `json:"platform_rows"`
	ReferenceRows int `json:"reference_rows"`

	// MissingCount counts keys present only in the platform table.
	MissingCount int `json:"missing_count"`

	// ExtraCount counts keys present only in the reference table.
	ExtraCount int `json:"extra_count"`

	CommonCount    int `json:"common_count"`
	DifferingCount int `json:"differing_count"`
	EqualCount     int `json:"equal_count"`

	// DiffRatio is DifferingCount / CommonCount, or 0 when nothing matched.
	DiffRatio float64 `json:"diff_ratio"`
}

// KeyedRow is a full table row with its display key.
type KeyedRow struct {
	Key string       `json:"key"`
	Row table.Record `json:"row"`
}

// DiffRow pairs the full rows of a differing key with the fields that differ.
type DiffRow struct {
	Key    string              `json:"key"`
	Source table.Record        `json:"source"`
	Target table.Record        `json:"target"`
	Fields []compare.FieldDiff `json:"fields"`
}

// Notice is the serializable form of a warning.
type Notice struct {
	Kind    apperrors.WarningKind `json:"kind"`
	Message string                `json:"message"`
}

// Result is the outcome of one run.
type Result struct {
	RunID   string  `json:"run_id"`
	Summary Summary `json:"summary"`

	// KeyFields are the platform names of the primary key fields.
	KeyFields []string `json:"key_fields"`

	// PlatformColumns and ReferenceColumns give the column order of the mapped tables.
	PlatformColumns  []string `json:"platform_columns"`
	ReferenceColumns []string `json:"reference_columns"`

	// Missing rows exist only in the platform table, Extra rows only in the reference table.
	Missing []KeyedRow `json:"missing"`
	Extra   []KeyedRow `json:"extra"`
	Diffs   []DiffRow  `json:"diffs"`

	Warnings      []apperrors.Warning `json:"-"`
	SkippedFields []string            `json:"skipped_fields,omitempty"`

	// PlatformOriginals and ReferenceOriginals map category codes back to the text they
	// were translated from.
	PlatformOriginals  map[string]string `json:"platform_originals,omitempty"`
	ReferenceOriginals map[string]string `json:"reference_originals,omitempty"`
}

// Notices converts the warnings for serialization.
func (r *Result) Notices() []Notice {
	out := make([]Notice, len(r.Warnings))
	for i, w := range r.Warnings {
		out[i] = Notice{Kind: w.Kind(), Message: w.Message()}
	}
	return out
}

// DiffFields returns, per display key, the set of differing fields.
func (r *Result) DiffFields() map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(r.Diffs))
	for _, d := range r.Diffs {
		set := make(map[string]struct{}, len(d.Fields))
		for _, f := range d.Fields {
			set[f.Field] = struct{}{}
		}
		out[d.Key] = set
	}
	return out
}
