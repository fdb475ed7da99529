package compare

import (
	"asset-reconciler/core/normalize"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"
)

// FieldDiff is one differing field of a matched key.
type FieldDiff struct {
	Field          string `json:"field"`
	PlatformValue  string `json:"platform_value"`
	ReferenceValue string `json:"reference_value"`
}

// KeyDiff lists the differing fields of one matched key in rule order.
type KeyDiff struct {
	Key    string      `json:"key"`
	Fields []FieldDiff `json:"fields"`
}

// Comparator evaluates field equality between matched rows.
type Comparator struct {
	registry *Registry
	profile  Profile
	enum     rules.EnumMap
	combo    rules.ComboMap
}

// New creates a comparator. A nil registry means DefaultRegistry.
func New(reg *Registry, profile Profile, enum rules.EnumMap, combo rules.ComboMap) *Comparator {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if enum == nil {
		enum = rules.EnumMap{}
	}
	if combo == nil {
		combo = rules.ComboMap{}
	}
	return &Comparator{registry: reg, profile: profile, enum: enum, combo: combo}
}

func (c *Comparator) config(rule rules.Rule) *FieldConfig {
	return &FieldConfig{Rule: rule, Profile: &c.profile, Enum: c.enum, Combo: c.combo}
}

// Strategy returns the name of the strategy used for a rule.
func (c *Comparator) Strategy(rule rules.Rule) string {
	s, _ := c.registry.Resolve(rule.DataType, rule.SourceField, &c.profile)
	return s.Name
}

// Equal compares two scalar values under a rule.
func (c *Comparator) Equal(rule rules.Rule, platform, reference any) bool {
	a, b := normalize.Value(platform), normalize.Value(reference)
	if a == "" && b == "" {
		return true
	}
	s, _ := c.registry.Resolve(rule.DataType, rule.SourceField, &c.profile)
	return s.Equal(a, b, c.config(rule))
}

// CompareField compares two aligned columns and returns true at each position whose
// values differ. Numeric and date columns handled by the built-in fallbacks are parsed
// once per column; every other strategy runs cell by cell.
func (c *Comparator) CompareField(rule rules.Rule, platform, reference []any) []bool {
	n := len(platform)
	if len(reference) < n {
		n = len(reference)
	}
	a := make([]string, n)
	b := make([]string, n)
	for i := 0; i < n; i++ {
		a[i] = normalize.Value(platform[i])
		b[i] = normalize.Value(reference[i])
	}

	diff := make([]bool, n)
	cfg := c.config(rule)
	s, _ := c.registry.Resolve(rule.DataType, rule.SourceField, &c.profile)

	switch {
	case s.builtin && rule.DataType == rules.Numeric:
		abs := cfg.absolute()
		na, nb := numericColumn(a, abs), numericColumn(b, abs)
		for i := range diff {
			diff[i] = !numbersEqual(na[i], nb[i], rule.NumericTolerance)
		}
	case s.builtin && rule.DataType == rules.Date:
		da, db := dateColumn(a, rule.Granularity), dateColumn(b, rule.Granularity)
		for i := range diff {
			diff[i] = !datesEqual(da[i], db[i])
		}
	default:
		for i := range diff {
			if a[i] == "" && b[i] == "" {
				continue
			}
			diff[i] = !s.Equal(a[i], b[i], cfg)
		}
	}
	return diff
}

// Compare evaluates every rule over the common keys. platformRows and referenceRows map an
// encoded key to its row in the respective table; both tables carry platform column names.
// A rule whose column is absent from either table is not compared, so callers must check
// the mapped columns first. display, when set, supplies the value shown for a field
// instead of the compared one.
func (c *Comparator) Compare(
	set []rules.Rule,
	common []string,
	platform *table.Table, platformRows map[string]int,
	reference *table.Table, referenceRows map[string]int,
	display DisplayFunc,
) []KeyDiff {
	if len(common) == 0 {
		return nil
	}
	perKey := make([][]FieldDiff, len(common))

	for _, rule := range set {
		if rule.IsPrimaryKey {
			continue
		}
		field := rule.SourceField
		if !platform.HasColumn(field) || !reference.HasColumn(field) {
			continue
		}
		pc := make([]any, len(common))
		rc := make([]any, len(common))
		for i, k := range common {
			pc[i] = platform.Rows[platformRows[k]][field]
			rc[i] = reference.Rows[referenceRows[k]][field]
		}
		for i, differs := range c.CompareField(rule, pc, rc) {
			if !differs {
				continue
			}
			pv, rv := normalize.Value(pc[i]), normalize.Value(rc[i])
			if display != nil {
				pv, rv = display(field, common[i], pv, rv)
			}
			perKey[i] = append(perKey[i], FieldDiff{Field: field, PlatformValue: pv, ReferenceValue: rv})
		}
	}

	var out []KeyDiff
	for i, k := range common {
		if len(perKey[i]) > 0 {
			out = append(out, KeyDiff{Key: k, Fields: perKey[i]})
		}
	}
	return out
}

// DisplayFunc rewrites the values of a differing field of the row with encoded key for
// the report.
type DisplayFunc func(field, key, platform, reference string) (string, string)
