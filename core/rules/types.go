package rules

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DataType selects the equivalence rule applied to a field.
type DataType string

const (
	Text    DataType = "text"
	Numeric DataType = "numeric"
	Date    DataType = "date"
)

// ParseDataType accepts both the workbook tokens (文本, 数值, 日期) and the English names.
// An empty token defaults to Text.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "文本", "text", "string":
		return Text, nil
	case "数值", "numeric", "number", "decimal":
		return Numeric, nil
	case "日期", "date":
		return Date, nil
	default:
		return "", fmt.Errorf("unknown data type %q", s)
	}
}

// Granularity is the truncation level for date comparisons.
type Granularity string

const (
	Day   Granularity = "day"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// ParseGranularity maps 日/月/年 and day/month/year. An empty token means Day.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "日", "day", "d":
		return Day, nil
	case "月", "month", "m":
		return Month, nil
	case "年", "year", "y":
		return Year, nil
	default:
		return "", fmt.Errorf("unknown date granularity %q", s)
	}
}

// Rule maps one platform column onto the reference table.
type Rule struct {
	// SourceField is the platform column name. Results are reported under this name.
	SourceField string `json:"source_field"`
	// TargetField is the reference column name. Empty when the value is purely computed.
	TargetField string `json:"target_field"`
	// DataType selects the comparison strategy.
	DataType DataType `json:"data_type"`
	// Tolerance is the raw tolerance cell as written in the rule book.
	Tolerance string `json:"tolerance,omitempty"`
	// NumericTolerance is set for numeric rules with a tolerance.
	NumericTolerance *decimal.Decimal `json:"-"`
	// Granularity is set for date rules.
	Granularity Granularity `json:"granularity,omitempty"`
	// IsPrimaryKey marks the rule as a component of the composite key.
	IsPrimaryKey bool `json:"primary_key"`
	// CalcExpression derives the reference value from other reference columns.
	CalcExpression string `json:"calc_expression,omitempty"`
	// Order is the declaration position in the rule book.
	Order int `json:"order"`
}

// HasCalc reports whether the reference value is derived.
func (r Rule) HasCalc() bool {
	return strings.TrimSpace(r.CalcExpression) != ""
}

// String renders the rule for log and error messages.
func (r Rule) String() string {
	s := fmt.Sprintf("rule #%d %s <- %s (%s)", r.Order+1, r.SourceField, r.TargetField, r.DataType)
	if r.HasCalc() {
		s += " calc " + r.CalcExpression
	}
	return s
}

// finalize resolves tolerance tokens according to the data type.
func (r *Rule) finalize() error {
	tol := strings.TrimSpace(r.Tolerance)
	switch r.DataType {
	case Numeric:
		if tol == "" {
			return nil
		}
		d, err := decimal.NewFromString(tol)
		if err != nil {
			return fmt.Errorf("invalid numeric tolerance %q", r.Tolerance)
		}
		d = d.Abs()
		r.NumericTolerance = &d
	case Date:
		g, err := ParseGranularity(tol)
		if err != nil {
			g = Day
		}
		r.Granularity = g
	}
	return nil
}

// RuleSet is the ordered, immutable collection of rules for a run.
type RuleSet struct {
	rules    []Rule
	bySource map[string]int
}

// NewRuleSet validates and indexes rules. A later rule for the same source field
// replaces the earlier one in place.
func NewRuleSet(rs []Rule) (*RuleSet, error) {
	set := &RuleSet{bySource: make(map[string]int, len(rs))}
	for _, r := range rs {
		if r.SourceField == "" {
			return nil, fmt.Errorf("rule #%d has no platform field", r.Order+1)
		}
		if r.DataType == "" {
			r.DataType = Text
		}
		if r.TargetField == "" && !r.HasCalc() {
			r.TargetField = r.SourceField
		}
		if err := r.finalize(); err != nil {
			return nil, fmt.Errorf("%s: %w", r, err)
		}
		if i, ok := set.bySource[r.SourceField]; ok {
			set.rules[i] = r
			continue
		}
		set.bySource[r.SourceField] = len(set.rules)
		set.rules = append(set.rules, r)
	}
	return set, nil
}

// All returns the rules in declaration order.
func (s *RuleSet) All() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Get returns the rule for a platform field.
func (s *RuleSet) Get(source string) (Rule, bool) {
	i, ok := s.bySource[source]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// PrimaryKeys returns key rules in declaration order.
func (s *RuleSet) PrimaryKeys() []Rule {
	var out []Rule
	for _, r := range s.rules {
		if r.IsPrimaryKey {
			out = append(out, r)
		}
	}
	return out
}

// KeyFields returns the platform names of the key rules.
func (s *RuleSet) KeyFields() []string {
	pks := s.PrimaryKeys()
	out := make([]string, len(pks))
	for i, r := range pks {
		out[i] = r.SourceField
	}
	return out
}

// SourceFields returns every platform field in declaration order.
func (s *RuleSet) SourceFields() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.SourceField
	}
	return out
}
