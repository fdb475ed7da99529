package compare

import (
	"math"
	"testing"

	"asset-reconciler/core/normalize"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/table"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tol(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newComparator() *Comparator {
	enum := rules.EnumMap{"交流110kV": "AC1100"}
	combo := rules.ComboMap{}
	combo.Add("PMS", "01", "02")
	return New(nil, DefaultProfile(), enum, combo)
}

func TestEqual(t *testing.T) {
	c := newComparator()

	tests := []struct {
		name      string
		rule      rules.Rule
		platform  any
		reference any
		want      bool
	}{
		{"BothEmpty", rules.Rule{SourceField: "备注", DataType: rules.Numeric}, nil, "", true},
		{"TextTrim", rules.Rule{SourceField: "名称", DataType: rules.Text}, " 变压器 ", "变压器", true},
		{"TextDiffers", rules.Rule{SourceField: "名称", DataType: rules.Text}, "变压器", "断路器", false},
		{"BooleanEverywhere", rules.Rule{SourceField: "是否共有", DataType: rules.Text}, "是", "Y", true},
		{"BooleanReverse", rules.Rule{SourceField: "是否共有", DataType: rules.Text}, "N", "否", true},
		{"BooleanMismatch", rules.Rule{SourceField: "是否共有", DataType: rules.Text}, "是", "N", false},
		{"Regulatory", rules.Rule{SourceField: "监管资产属性", DataType: rules.Text}, `运维\输电`, "01-输电", true},
		{"RegulatoryDiffers", rules.Rule{SourceField: "监管资产属性", DataType: rules.Text}, `运维\输电`, "02-变电", false},
		{"DepreciationMethod", rules.Rule{SourceField: "折旧方法", DataType: rules.Text}, "年限平均法", "直线法", true},
		{"Enum", rules.Rule{SourceField: "线站电压等级", DataType: rules.Text}, "交流110kV", "AC1100", true},
		{"EnumUnknown", rules.Rule{SourceField: "线站电压等级", DataType: rules.Text}, "交流35kV", "AC1100", false},
		{"Combo", rules.Rule{SourceField: "关联实物管理系统", DataType: rules.Text}, "PMS", "02", true},
		{"ComboNotListed", rules.Rule{SourceField: "关联实物管理系统", DataType: rules.Text}, "PMS", "03", false},
		{"ComboUnknownKey", rules.Rule{SourceField: "关联实物管理系统", DataType: rules.Text}, "OMS", "OMS", false},
		{"ComboUnknownKeyDiffers", rules.Rule{SourceField: "关联实物管理系统", DataType: rules.Text}, "OMS", "02", false},
		{"Category", rules.Rule{SourceField: "资产分类", DataType: rules.Text}, "1001", "1001", true},
		{"NumericExact", rules.Rule{SourceField: "原值", DataType: rules.Numeric}, "1,000.00", 1000, true},
		{"NumericWithin", rules.Rule{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.01")}, 100.00, 100.01, true},
		{"NumericOutside", rules.Rule{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.01")}, 100.00, 100.02, false},
		{"NumericNaNPair", rules.Rule{SourceField: "原值", DataType: rules.Numeric}, "abc", math.NaN(), true},
		{"NumericNaNVsNumber", rules.Rule{SourceField: "原值", DataType: rules.Numeric}, "", 0, false},
		{"DepreciationAbs", rules.Rule{SourceField: "累计折旧", DataType: rules.Numeric}, -500, 500, true},
		{"DepreciationEnglish", rules.Rule{SourceField: "accumulatedDepreciation", DataType: rules.Numeric}, "-100.5", "100.5", true},
		{"NoAbsOtherwise", rules.Rule{SourceField: "净值", DataType: rules.Numeric}, -500, 500, false},
		{"DateFormats", rules.Rule{SourceField: "开始日期", DataType: rules.Date}, "2024/03/15", "2024年3月15日", true},
		{"DateCompact", rules.Rule{SourceField: "开始日期", DataType: rules.Date}, "20240315", "03-15-2024", true},
		{"DateMonth", rules.Rule{SourceField: "开始日期", DataType: rules.Date, Granularity: rules.Month}, "2024-03-15", "2024-03-01", true},
		{"DateMonthDiffers", rules.Rule{SourceField: "开始日期", DataType: rules.Date, Granularity: rules.Month}, "2024-03-15", "2024-04-15", false},
		{"DateYear", rules.Rule{SourceField: "开始日期", DataType: rules.Date, Granularity: rules.Year}, "2024-01-01", "2024-12-31", true},
		{"DateUnparseablePair", rules.Rule{SourceField: "开始日期", DataType: rules.Date}, "unknown", "unknown", false},
		{"DateVsEmpty", rules.Rule{SourceField: "开始日期", DataType: rules.Date}, "2024-03-15", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Equal(tt.rule, tt.platform, tt.reference))
		})
	}
}

// Scalar and column comparison agree on every pair.
func TestCompareField_MatchesEqual(t *testing.T) {
	c := newComparator()
	ruleSet := []rules.Rule{
		{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.5")},
		{SourceField: "累计折旧", DataType: rules.Numeric},
		{SourceField: "开始日期", DataType: rules.Date, Granularity: rules.Month},
		{SourceField: "名称", DataType: rules.Text},
		{SourceField: "线站电压等级", DataType: rules.Text},
	}
	platform := []any{"1", "-2", nil, "2024-01-31", "是", "abc", 3.25, "交流110kV"}
	reference := []any{"1.4", "2", "", "2024-01-01", "Y", "abd", "3.25", "AC1100"}

	for _, r := range ruleSet {
		t.Run(r.SourceField, func(t *testing.T) {
			mask := c.CompareField(r, platform, reference)
			require.Len(t, mask, len(platform))
			for i := range platform {
				assert.Equal(t, !c.Equal(r, platform[i], reference[i]), mask[i], "row %d", i)
			}
		})
	}
}

// Numeric equality under a tolerance is symmetric and reflexive.
func TestNumericTolerance_Symmetric(t *testing.T) {
	c := newComparator()
	r := rules.Rule{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.05")}
	values := []any{0, 0.04, 0.05, 0.1, -0.05, "x", nil, "1e3", 1000}
	for _, a := range values {
		assert.True(t, c.Equal(r, a, a), "%v", a)
		for _, b := range values {
			assert.Equal(t, c.Equal(r, a, b), c.Equal(r, b, a), "%v vs %v", a, b)
		}
	}
}

func TestStrategyResolution(t *testing.T) {
	c := newComparator()
	assert.Equal(t, "regulatory", c.Strategy(rules.Rule{SourceField: "监管资产属性", DataType: rules.Text}))
	assert.Equal(t, "enum", c.Strategy(rules.Rule{SourceField: "线站电压等级", DataType: rules.Text}))
	assert.Equal(t, "text", c.Strategy(rules.Rule{SourceField: "线站电压等级", DataType: rules.DataType("currency")}))
	assert.Equal(t, "numeric", c.Strategy(rules.Rule{SourceField: "监管资产属性", DataType: rules.Numeric}))
	assert.Equal(t,
		[]string{"regulatory", "boolean", "depreciation_method", "enum", "category", "combo"},
		DefaultRegistry().Names())
}

func TestRegistry_Override(t *testing.T) {
	reg := DefaultRegistry()
	reg.Override(Strategy{
		Name:     "prefix",
		DataType: rules.Text,
		Applies:  func(f string, _ *Profile) bool { return f == "WBS" },
		Equal: func(a, b string, _ *FieldConfig) bool {
			return len(a) >= 3 && len(b) >= 3 && a[:3] == b[:3]
		},
	})
	reg.SetFallback(rules.Numeric, func(a, b string, _ *FieldConfig) bool { return true })

	c := New(reg, DefaultProfile(), nil, nil)
	assert.True(t, c.Equal(rules.Rule{SourceField: "WBS", DataType: rules.Text}, "ABC-1", "ABC-2"))
	assert.False(t, c.Equal(rules.Rule{SourceField: "WBS", DataType: rules.Text}, "ABC-1", "ABD-1"))
	assert.True(t, c.Equal(rules.Rule{SourceField: "原值", DataType: rules.Numeric}, 1, 2))
}

func TestProfile_BooleanFieldsOnly(t *testing.T) {
	p := DefaultProfile()
	p.BooleanEverywhere = false
	p.BooleanFields = []string{"是否共有"}
	c := New(nil, p, nil, nil)

	assert.True(t, c.Equal(rules.Rule{SourceField: "是否共有", DataType: rules.Text}, "是", "Y"))
	assert.False(t, c.Equal(rules.Rule{SourceField: "备注", DataType: rules.Text}, "是", "Y"))
}

func TestCompare(t *testing.T) {
	c := newComparator()
	set := []rules.Rule{
		{SourceField: "资产编号", DataType: rules.Text, IsPrimaryKey: true},
		{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.01")},
		{SourceField: "名称", DataType: rules.Text},
		{SourceField: "缺失列", DataType: rules.Text},
	}
	platform := table.New("platform", "资产编号", "原值", "名称", "缺失列")
	platform.Append(table.Record{"资产编号": "A1", "原值": 100.00, "名称": "变压器"})
	platform.Append(table.Record{"资产编号": "A2", "原值": 200, "名称": "断路器"})
	reference := table.New("reference", "资产编号", "原值", "名称")
	reference.Append(table.Record{"资产编号": "A2", "原值": 250, "名称": "隔离开关"})
	reference.Append(table.Record{"资产编号": "A1", "原值": 100.01, "名称": "变压器"})

	display := func(field, key, p, r string) (string, string) {
		if field == "名称" {
			return "[" + p + "]", key
		}
		return p, r
	}
	got := c.Compare(set, []string{"A1", "A2"},
		platform, map[string]int{"A1": 0, "A2": 1},
		reference, map[string]int{"A1": 1, "A2": 0},
		display)

	require.Len(t, got, 1)
	assert.Equal(t, "A2", got[0].Key)
	assert.Equal(t, []FieldDiff{
		{Field: "原值", PlatformValue: "200", ReferenceValue: "250"},
		{Field: "名称", PlatformValue: "[断路器]", ReferenceValue: "A2"},
	}, got[0].Fields)

	assert.Nil(t, c.Compare(set, nil, platform, nil, reference, nil, nil))
}

func TestNumericTolerance_Boundary(t *testing.T) {
	c := newComparator()
	r := rules.Rule{SourceField: "原值", DataType: rules.Numeric, NumericTolerance: tol("0.05")}

	pairs := []struct {
		a, b string
		want bool
	}{
		{"10.00", "10.05", true},
		{"10.00", "9.95", true},
		{"10.00", "10.0500001", false},
		{"-3.2", "-3.25", true},
		{"-3.2", "-3.2500001", false},
	}
	for _, p := range pairs {
		assert.Equal(t, p.want, c.Equal(r, p.a, p.b), "%s vs %s", p.a, p.b)
		assert.Equal(t, p.want, c.Equal(r, p.b, p.a), "%s vs %s", p.b, p.a)
		mask := c.CompareField(r, []any{p.a, p.b}, []any{p.b, p.a})
		assert.Equal(t, []bool{!p.want, !p.want}, mask)
	}
}

func TestDepreciationSignInvariance(t *testing.T) {
	c := newComparator()
	for _, field := range []string{"累计折旧", "本年折旧额", "AccumulatedDepreciation"} {
		r := rules.Rule{SourceField: field, DataType: rules.Numeric}
		for _, x := range []any{1, 0.5, "12,345.67", 1e9} {
			neg := "-" + normalize.Value(x)
			assert.True(t, c.Equal(r, x, neg), "%s: %v vs %s", field, x, neg)
		}
	}
}

func TestDateGranularity(t *testing.T) {
	c := newComparator()
	at := func(g rules.Granularity) rules.Rule {
		return rules.Rule{SourceField: "开始日期", DataType: rules.Date, Granularity: g}
	}

	assert.True(t, c.Equal(at(rules.Month), "2024-03-15", "2024-03-20"))
	assert.False(t, c.Equal(at(rules.Day), "2024-03-15", "2024-03-20"))
	assert.False(t, c.Equal(at(rules.Year), "2024-03-15", "2025-03-15"))
	assert.True(t, c.Equal(at(rules.Year), "2024-03-15", "2024-11-30"))
}
