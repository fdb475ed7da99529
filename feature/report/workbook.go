package report

import (
	"fmt"
	"io"
	"strings"

	"asset-reconciler/core/normalize"
	"asset-reconciler/core/reconcile"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the report workbook.
const (
	SheetSummary = "汇总"
	SheetMissing = "ERP缺失"
	SheetExtra   = "ERP多出"
	SheetDiffs   = "差异明细"
)

// Options controls the workbook layout.
type Options struct {
	// Highlight is the ARGB-less hex fill of differing cells.
	Highlight string `mapstructure:"highlight" default:"FF0000"`
	// KeyLabel names the key column.
	KeyLabel string `mapstructure:"key_label" default:"主键"`
}

func (o Options) withDefaults() Options {
	if o.Highlight == "" {
		o.Highlight = "FF0000"
	}
	if o.KeyLabel == "" {
		o.KeyLabel = "主键"
	}
	return o
}

type writer struct {
	f         *excelize.File
	opts      Options
	header    int
	highlight int
}

// WriteWorkbook writes res as an xlsx workbook. ruleList orders the diff columns:
// key fields first, then compared fields in rule order, then the rest.
func WriteWorkbook(out io.Writer, res *reconcile.Result, ruleList []rules.Rule, opts Options) error {
	opts = opts.withDefaults()
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	highlight, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{opts.Highlight}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	w := &writer{f: f, opts: opts, header: header, highlight: highlight}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetMissing, SheetExtra, SheetDiffs} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := w.summary(res); err != nil {
		return fmt.Errorf("write %s: %w", SheetSummary, err)
	}
	if err := w.keyedRows(SheetMissing, res.PlatformColumns, res.Missing); err != nil {
		return fmt.Errorf("write %s: %w", SheetMissing, err)
	}
	if err := w.keyedRows(SheetExtra, res.ReferenceColumns, res.Extra); err != nil {
		return fmt.Errorf("write %s: %w", SheetExtra, err)
	}
	if err := w.diffs(res, columnOrder(res, ruleList)); err != nil {
		return fmt.Errorf("write %s: %w", SheetDiffs, err)
	}

	f.SetActiveSheet(0)
	return f.Write(out)
}

func (w *writer) summary(res *reconcile.Result) error {
	s := res.Summary
	key := strings.Join(res.KeyFields, " + ")
	if key == "" {
		key = w.opts.KeyLabel
	}
	skipped := "无"
	if len(res.SkippedFields) > 0 {
		skipped = strings.Join(res.SkippedFields, ", ")
	}

	rows := [][]any{
		{"项目", "值"},
		{"运行编号", res.RunID},
		{"主键", key},
		{"平台表记录数", s.PlatformRows},
		{"ERP表记录数", s.ReferenceRows},
		{"ERP中缺失的" + w.opts.KeyLabel, s.MissingCount},
		{"ERP中多出的" + w.opts.KeyLabel, s.ExtraCount},
		{"共同" + w.opts.KeyLabel + "数量", s.CommonCount},
		{"存在差异的" + w.opts.KeyLabel + "数量", s.DifferingCount},
		{"完全一致的" + w.opts.KeyLabel + "数量", s.EqualCount},
		{"差异数据占比", fmt.Sprintf("%.2f%%", s.DiffRatio*100)},
		{"跳过的字段", skipped},
	}
	for _, n := range res.Notices() {
		rows = append(rows, []any{"提示(" + string(n.Kind) + ")", n.Message})
	}
	if err := w.rows(SheetSummary, rows); err != nil {
		return err
	}
	return w.f.SetColWidth(SheetSummary, "A", "B", 28)
}

func (w *writer) keyedRows(sheet string, columns []string, data []reconcile.KeyedRow) error {
	rows := make([][]any, 0, len(data)+1)
	rows = append(rows, headerRow(w.opts.KeyLabel, columns))
	for _, kr := range data {
		rows = append(rows, recordRow(kr.Key, columns, kr.Row))
	}
	return w.rows(sheet, rows)
}

func (w *writer) diffs(res *reconcile.Result, columns []string) error {
	rows := make([][]any, 0, 2*len(res.Diffs)+1)
	rows = append(rows, append([]any{w.opts.KeyLabel, "来源", "差异字段"}, toAny(columns)...))
	for _, d := range res.Diffs {
		names := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			names[i] = f.Field
		}
		fields := strings.Join(names, ", ")
		rows = append(rows,
			append([]any{d.Key, "平台表", fields}, values(columns, d.Source)...),
			append([]any{d.Key, "ERP表", fields}, values(columns, d.Target)...),
		)
	}
	if err := w.rows(SheetDiffs, rows); err != nil {
		return err
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i + 4
	}
	for i, d := range res.Diffs {
		for _, f := range d.Fields {
			col, ok := index[f.Field]
			if !ok {
				continue
			}
			top, err := excelize.CoordinatesToCellName(col, 2*i+2)
			if err != nil {
				return err
			}
			bottom, err := excelize.CoordinatesToCellName(col, 2*i+3)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(SheetDiffs, top, bottom, w.highlight); err != nil {
				return err
			}
		}
	}
	return nil
}

// rows writes data starting at A1, styles the first row and freezes it.
func (w *writer) rows(sheet string, data [][]any) error {
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := w.f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(data[0]), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		return err
	}
	return w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func columnOrder(res *reconcile.Result, ruleList []rules.Rule) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, k := range res.KeyFields {
		add(k)
	}
	available := make(map[string]struct{}, len(res.PlatformColumns))
	for _, c := range res.PlatformColumns {
		available[c] = struct{}{}
	}
	for _, r := range ruleList {
		if _, ok := available[r.SourceField]; ok {
			add(r.SourceField)
		}
	}
	for _, c := range res.PlatformColumns {
		add(c)
	}
	return out
}

func headerRow(keyLabel string, columns []string) []any {
	return append([]any{keyLabel}, toAny(columns)...)
}

func recordRow(key string, columns []string, r table.Record) []any {
	return append([]any{key}, values(columns, r)...)
}

func values(columns []string, r table.Record) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = normalize.Value(r[c])
	}
	return out
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
