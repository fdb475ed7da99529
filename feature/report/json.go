package report

import (
	"encoding/json"
	"io"

	"asset-reconciler/core/reconcile"
)

// Document is the JSON form of a result. Warnings are flattened into notices.
type Document struct {
	RunID         string               `json:"run_id"`
	Summary       reconcile.Summary    `json:"summary"`
	KeyFields     []string             `json:"key_fields"`
	Missing       []reconcile.KeyedRow `json:"missing"`
	Extra         []reconcile.KeyedRow `json:"extra"`
	Diffs         []reconcile.DiffRow  `json:"diffs"`
	SkippedFields []string             `json:"skipped_fields,omitempty"`
	Notices       []reconcile.Notice   `json:"notices"`
}

// NewDocument builds the serializable form of res.
func NewDocument(res *reconcile.Result) Document {
	doc := Document{
		RunID:         res.RunID,
		Summary:       res.Summary,
		KeyFields:     res.KeyFields,
		Missing:       res.Missing,
		Extra:         res.Extra,
		Diffs:         res.Diffs,
		SkippedFields: res.SkippedFields,
		Notices:       res.Notices(),
	}
	if doc.Missing == nil {
		doc.Missing = []reconcile.KeyedRow{}
	}
	if doc.Extra == nil {
		doc.Extra = []reconcile.KeyedRow{}
	}
	if doc.Diffs == nil {
		doc.Diffs = []reconcile.DiffRow{}
	}
	return doc
}

// WriteJSON writes res as an indented Document.
func WriteJSON(w io.Writer, res *reconcile.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(res))
}
