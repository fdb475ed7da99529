package reconcile

import (
	"context"
	"fmt"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/calc"
	"asset-reconciler/core/category"
	"asset-reconciler/core/compare"
	"asset-reconciler/core/keys"
	"asset-reconciler/core/normalize"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/session"
	"asset-reconciler/core/table"

	"go.uber.org/zap"
)

// Options tunes an Engine.
type Options struct {
	// Profile names the specially compared fields. Nil means compare.DefaultProfile.
	Profile *compare.Profile
	// Registry overrides the comparison strategies. Nil means compare.DefaultRegistry.
	Registry *compare.Registry
	// CategoryPrefixWidth is the code prefix compared for the category field.
	CategoryPrefixWidth int
}

// Engine runs comparisons for one rule book.
type Engine struct {
	book       *rules.Book
	profile    compare.Profile
	calcOpts   calc.Options
	registry   *compare.Registry
	keyBuilder *keys.Builder
	prefix     int
}

// NewEngine validates the rule book and compiles the key rules.
func NewEngine(book *rules.Book, opts Options) (*Engine, error) {
	if book == nil || book.Rules == nil || book.Rules.Len() == 0 {
		return nil, &apperrors.ConfigError{Reason: "rule book has no rules"}
	}
	profile := compare.DefaultProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	e := &Engine{
		book:     book,
		profile:  profile,
		calcOpts: profile.CalcOptions(),
		registry: opts.Registry,
		prefix:   opts.CategoryPrefixWidth,
	}
	if e.prefix <= 0 {
		e.prefix = category.DefaultPrefixWidth
	}
	b, err := keys.NewBuilder(book.Rules.PrimaryKeys(), e.calcOpts)
	if err != nil {
		if book.Source != "" {
			return nil, fmt.Errorf("%s: %w", book.Source, err)
		}
		return nil, err
	}
	e.keyBuilder = b
	return e, nil
}

// Rules returns the rules in declaration order.
func (e *Engine) Rules() []rules.Rule {
	return e.book.Rules.All()
}

// Profile returns the comparison profile in use.
func (e *Engine) Profile() compare.Profile {
	return e.profile
}

// blank reports a table with neither columns nor rows, such as an empty export.
func blank(t *table.Table) bool {
	return len(t.Columns) == 0 && t.Len() == 0
}

// Run compares platform against reference. Both tables are copied first; the caller's
// tables are left untouched. Configuration, schema and key problems abort the run before
// any field is compared. ctx is only checked before the synchronous phase starts.
func (e *Engine) Run(ctx context.Context, sess *session.Session, platform, reference *table.Table) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New(nil)
		defer sess.Close()
	}
	log := sess.Logger

	p, r := platform.Clone(), reference.Clone()
	if p.Name == "" {
		p.Name = SidePlatform
	}
	if r.Name == "" {
		r.Name = SideReference
	}
	p.NormalizeColumns()
	r.NormalizeColumns()

	if err := e.checkSchema(p, r); err != nil {
		return nil, err
	}

	res := &Result{RunID: sess.ID, KeyFields: e.keyBuilder.Fields()}

	skipped := make(map[string]struct{})
	if !blank(r) {
		derived, warnings, err := e.calculate(r, skipped)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, warnings...)
		e.mapColumns(r, derived, skipped)
		res.Warnings = append(res.Warnings, e.unmapped(r, skipped)...)
	}
	for _, rule := range e.Rules() {
		if _, ok := skipped[rule.SourceField]; ok {
			res.SkippedFields = append(res.SkippedFields, rule.SourceField)
		}
	}

	pOrig, rOrig, translator := e.translateCategories(p, r)

	pRep, err := e.validateKeys(p)
	if err != nil {
		return nil, err
	}
	rRep, err := e.validateKeys(r)
	if err != nil {
		return nil, err
	}
	for _, rep := range []*keys.Report{pRep, rRep} {
		if rep.Warning != nil {
			res.Warnings = append(res.Warnings, rep.Warning)
		}
	}
	if p.Len() != r.Len() {
		log.Info("Row counts differ",
			zap.Int("platform_rows", p.Len()),
			zap.Int("reference_rows", r.Len()))
	}

	part := keys.Resolve(pRep.Keys, rRep.Keys)
	if len(part.Common) == 0 && len(pRep.Keys) > 0 && len(rRep.Keys) > 0 {
		res.Warnings = append(res.Warnings, &apperrors.NoCommonKeysWarning{
			PlatformKeys:  len(pRep.Keys),
			ReferenceKeys: len(rRep.Keys),
			KeyFields:     e.keyBuilder.Fields(),
		})
	}

	cmp := compare.New(e.registry, e.profile, e.book.Enum, e.book.Combo)
	var display compare.DisplayFunc
	if translator != nil {
		res.PlatformOriginals = translator.PlatformOriginals()
		res.ReferenceOriginals = translator.ReferenceOriginals()
		display = e.categoryDisplay(pOrig, pRep.Index, rOrig, rRep.Index)
	}
	diffs := cmp.Compare(e.comparable(skipped), part.Common, p, pRep.Index, r, rRep.Index, display)

	res.Summary = Aggregate(AggregateInput{
		PlatformRows:  platform.Len(),
		ReferenceRows: reference.Len(),
		Partition:     part,
		Diffs:         diffs,
	})

	// Reports show the category text, not the codes it was compared as
	if pOrig != nil {
		p.SetColumn(e.profile.CategoryField, pOrig)
	}
	if rOrig != nil {
		r.SetColumn(e.profile.CategoryField, rOrig)
	}
	res.PlatformColumns = append([]string(nil), p.Columns...)
	res.ReferenceColumns = append([]string(nil), r.Columns...)

	var rows rowSource = &memoryRows{
		tables: map[string]*table.Table{SidePlatform: p, SideReference: r},
		index:  map[string]map[string]int{SidePlatform: pRep.Index, SideReference: rRep.Index},
	}
	if sess.Store != nil {
		if err := sess.Store.Stage(ctx, SidePlatform, p, rowKeys(p.Len(), pRep.Index)); err != nil {
			return nil, err
		}
		if err := sess.Store.Stage(ctx, SideReference, r, rowKeys(r.Len(), rRep.Index)); err != nil {
			return nil, err
		}
		rows = &stagedRows{store: sess.Store}
	}
	if err := e.collectRows(ctx, res, rows, part, diffs); err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		log.Warn(w.Message(), zap.String("kind", string(w.Kind())))
	}
	log.Info("Comparison finished",
		zap.Int("common", res.Summary.CommonCount),
		zap.Int("missing", res.Summary.MissingCount),
		zap.Int("extra", res.Summary.ExtraCount),
		zap.Int("differing", res.Summary.DifferingCount),
		zap.Float64("diff_ratio", res.Summary.DiffRatio),
		zap.Duration("elapsed", sess.Elapsed()))
	return res, nil
}

// checkSchema requires every platform field in the platform table and every mapped
// reference field in the reference table. Calculated fields are checked when evaluated.
func (e *Engine) checkSchema(p, r *table.Table) error {
	missing := make(map[string][]string)
	for _, rule := range e.Rules() {
		if !blank(p) && !p.HasColumn(rule.SourceField) {
			missing[p.Name] = append(missing[p.Name], rule.SourceField)
		}
		if !blank(r) && !rule.HasCalc() && !r.HasColumn(rule.TargetField) {
			missing[r.Name] = append(missing[r.Name], rule.TargetField)
		}
	}
	if len(missing) > 0 {
		return &apperrors.SchemaError{Missing: missing}
	}
	return nil
}

// calculate evaluates every calculated rule against the reference table into a side
// table. A failing key rule aborts the run; any other failing rule is skipped.
func (e *Engine) calculate(r *table.Table, skipped map[string]struct{}) (*calc.Derived, []apperrors.Warning, error) {
	derived := calc.NewDerived()
	var warnings []apperrors.Warning
	for _, rule := range e.Rules() {
		if !rule.HasCalc() {
			continue
		}
		values, err := calc.Evaluate(r, rule.CalcExpression, rule.DataType, e.calcOpts)
		if err != nil {
			err = fmt.Errorf("%s: %w", rule, err)
			if rule.IsPrimaryKey {
				return nil, nil, err
			}
			skipped[rule.SourceField] = struct{}{}
			warnings = append(warnings, &apperrors.FieldSkippedWarning{Field: rule.SourceField, Err: err})
			continue
		}
		derived.Set(rule.SourceField, values)
	}
	return derived, warnings, nil
}

// mapColumns renames reference columns to platform names and merges calculated values.
// A reference column feeding several rules is renamed for at most one of them and copied
// for the others. A column kept under its own name by an identity rule is never renamed.
func (e *Engine) mapColumns(r *table.Table, derived *calc.Derived, skipped map[string]struct{}) {
	claimed := make(map[string]struct{})
	for _, rule := range e.Rules() {
		if !rule.HasCalc() && rule.TargetField == rule.SourceField {
			claimed[rule.TargetField] = struct{}{}
		}
	}

	rename := make(map[string]string)
	for _, rule := range e.Rules() {
		if rule.HasCalc() || rule.TargetField == rule.SourceField {
			continue
		}
		if _, taken := claimed[rule.TargetField]; taken {
			r.SetColumn(rule.SourceField, r.Column(rule.TargetField))
			continue
		}
		claimed[rule.TargetField] = struct{}{}
		rename[rule.TargetField] = rule.SourceField
	}
	r.Rename(rename)

	// A skipped calculation must not fall back to a same-named original column
	for f := range skipped {
		r.Drop(f)
	}
	derived.MergeInto(r)
}

// unmapped skips, with a warning, every rule whose platform-named column is missing from
// the mapped reference table, so no rule silently drops out of the comparison.
func (e *Engine) unmapped(r *table.Table, skipped map[string]struct{}) []apperrors.Warning {
	var warnings []apperrors.Warning
	for _, rule := range e.Rules() {
		if _, ok := skipped[rule.SourceField]; ok || r.HasColumn(rule.SourceField) {
			continue
		}
		skipped[rule.SourceField] = struct{}{}
		warnings = append(warnings, &apperrors.FieldSkippedWarning{
			Field: rule.SourceField,
			Err:   fmt.Errorf("%s: column %s missing from table %s after mapping", rule, rule.SourceField, r.Name),
		})
	}
	return warnings
}

// translateCategories replaces category names on both sides with comparable codes and
// returns the original columns so they can be restored for reporting.
func (e *Engine) translateCategories(p, r *table.Table) ([]any, []any, *category.Translator) {
	field := e.profile.CategoryField
	if field == "" || len(e.book.Categories) == 0 {
		return nil, nil, nil
	}
	if _, ok := e.book.Rules.Get(field); !ok {
		return nil, nil, nil
	}
	tr := category.NewTranslator(e.book.Categories, category.Options{PrefixWidth: e.prefix})

	var pOrig, rOrig []any
	observed := make(map[string]struct{})
	if r.HasColumn(field) {
		for _, v := range r.Strings(field) {
			if v != "" {
				observed[v] = struct{}{}
			}
		}
	}
	if p.HasColumn(field) {
		pOrig = p.Column(field)
		out := make([]any, len(pOrig))
		for i, v := range pOrig {
			out[i] = tr.TranslatePlatform(normalize.Value(v), observed)
		}
		p.SetColumn(field, out)
	}
	if r.HasColumn(field) {
		rOrig = r.Column(field)
		out := make([]any, len(rOrig))
		for i, v := range rOrig {
			out[i] = tr.TranslateReference(normalize.Value(v))
		}
		r.SetColumn(field, out)
	}
	return pOrig, rOrig, tr
}

// categoryDisplay shows each differing row's own category text instead of the code it was
// compared as. Several names can share one code, so the reverse maps cannot be used here.
func (e *Engine) categoryDisplay(pOrig []any, pIndex map[string]int, rOrig []any, rIndex map[string]int) compare.DisplayFunc {
	field := e.profile.CategoryField
	original := func(col []any, index map[string]int, key, fallback string) string {
		if i, ok := index[key]; ok && i < len(col) {
			return normalize.Value(col[i])
		}
		return fallback
	}
	return func(f, key, pv, rv string) (string, string) {
		if f != field {
			return pv, rv
		}
		return original(pOrig, pIndex, key, pv), original(rOrig, rIndex, key, rv)
	}
}

func (e *Engine) validateKeys(t *table.Table) (*keys.Report, error) {
	if blank(t) {
		return &keys.Report{Table: t.Name, Index: map[string]int{}}, nil
	}
	return keys.Validate(t, e.keyBuilder.Fields(), e.keyBuilder.BuildAll(t))
}

// comparable lists the rules whose values are compared, in declaration order.
func (e *Engine) comparable(skipped map[string]struct{}) []rules.Rule {
	all := e.Rules()
	out := make([]rules.Rule, 0, len(all))
	for _, rule := range all {
		if _, ok := skipped[rule.SourceField]; ok {
			continue
		}
		out = append(out, rule)
	}
	return out
}

func (e *Engine) collectRows(ctx context.Context, res *Result, rows rowSource, part keys.Partition, diffs []compare.KeyDiff) error {
	diffKeys := make([]string, len(diffs))
	for i, d := range diffs {
		diffKeys[i] = d.Key
	}

	platformRows, err := rows.Rows(ctx, SidePlatform, append(append([]string(nil), part.OnlyInA...), diffKeys...))
	if err != nil {
		return err
	}
	referenceRows, err := rows.Rows(ctx, SideReference, append(append([]string(nil), part.OnlyInB...), diffKeys...))
	if err != nil {
		return err
	}

	res.Missing = make([]KeyedRow, 0, len(part.OnlyInA))
	for _, k := range part.OnlyInA {
		res.Missing = append(res.Missing, KeyedRow{Key: keys.Display(k), Row: platformRows[k]})
	}
	res.Extra = make([]KeyedRow, 0, len(part.OnlyInB))
	for _, k := range part.OnlyInB {
		res.Extra = append(res.Extra, KeyedRow{Key: keys.Display(k), Row: referenceRows[k]})
	}
	res.Diffs = make([]DiffRow, 0, len(diffs))
	for _, d := range diffs {
		res.Diffs = append(res.Diffs, DiffRow{
			Key:    keys.Display(d.Key),
			Source: platformRows[d.Key],
			Target: referenceRows[d.Key],
			Fields: d.Fields,
		})
	}
	return nil
}
