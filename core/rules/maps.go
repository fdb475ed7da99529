package rules

import (
	"strings"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/category"
	"asset-reconciler/core/normalize"
)

// EnumMap translates a display name to its code (e.g. a voltage level name to the ERP code).
type EnumMap map[string]string

// Code returns the code for name, or name itself when it is not mapped.
func (m EnumMap) Code(name string) string {
	if code, ok := m[name]; ok {
		return code
	}
	return name
}

// ComboMap lists, for each platform value, the reference values considered equivalent to it.
type ComboMap map[string]map[string]struct{}

// Add unions values into the allowed set for key.
func (m ComboMap) Add(key string, values ...string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{}, len(values))
		m[key] = set
	}
	for _, v := range values {
		set[v] = struct{}{}
	}
}

// Allows reports whether ref is an allowed value for platform.
func (m ComboMap) Allows(platform, ref string) bool {
	set, ok := m[platform]
	if !ok {
		return false
	}
	_, ok = set[ref]
	return ok
}

var (
	comboPlatformHeaderTokens = []string{"平台", "代码", "标识", "platform", "code"}
	comboERPHeaderTokens      = []string{"erp", "卡片", "标识"}
)

const (
	colCategoryFullName   = "同源目录完整名称"
	colCategoryCoarse     = "21年资产目录大类"
	colCategoryDetailDesc = "ERP资产明细类描述"
	colCategorySourceCode = "同源目录编码"
	colCategoryERPDetail  = "ERP资产明细类别"
)

// ParseEnumRows reads a [code, name] sheet. The first row is the header; the code and
// name columns are located by header text and default to the first two columns.
func ParseEnumRows(rows [][]string) EnumMap {
	out := make(EnumMap)
	if len(rows) == 0 {
		return out
	}
	codeCol, nameCol := 0, 1
	for i, h := range rows[0] {
		switch strings.ToLower(normalize.ColumnName(h)) {
		case "编码", "code":
			codeCol = i
		case "名称", "name":
			nameCol = i
		}
	}
	for _, row := range rows[1:] {
		code := normalize.Value(cell(row, codeCol))
		name := normalize.Value(cell(row, nameCol))
		if code == "" || name == "" {
			continue
		}
		out[name] = code
	}
	return out
}

// ParseComboRows reads the combination sheet: platform code in the first column and
// '|'-delimited ERP codes in the third. The first row is the header; a second
// header-like row is detected by keyword and skipped as well.
func ParseComboRows(rows [][]string) ComboMap {
	out := make(ComboMap)
	if len(rows) < 2 {
		return out
	}
	type pair struct{ platform, erp string }
	var data []pair
	for _, row := range rows[1:] {
		p := normalize.Value(cell(row, 0))
		e := normalize.Value(cell(row, 2))
		if p == "" || e == "" {
			continue
		}
		data = append(data, pair{p, e})
	}
	if len(data) > 0 && (containsAny(data[0].platform, comboPlatformHeaderTokens) || containsAny(data[0].erp, comboERPHeaderTokens)) {
		data = data[1:]
	}
	for _, d := range data {
		var values []string
		for _, v := range strings.Split(d.erp, "|") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			out.Add(d.platform, values...)
		}
	}
	return out
}

// ParseCategoryRows reads the asset category mapping sheet. Its header is on the
// second row and data starts on the third.
func ParseCategoryRows(rows [][]string) ([]category.Entry, error) {
	if len(rows) < 2 {
		return nil, nil
	}
	idx := make(map[string]int)
	for i, h := range rows[1] {
		idx[normalize.ColumnName(h)] = i
	}
	required := []string{colCategoryFullName, colCategoryCoarse, colCategoryDetailDesc, colCategorySourceCode, colCategoryERPDetail}
	var missing []string
	for _, c := range required {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &apperrors.ConfigError{Reason: "category sheet header is missing columns: " + strings.Join(missing, ", ")}
	}

	var out []category.Entry
	for _, row := range rows[2:] {
		e := category.Entry{
			FullName:   normalize.Value(cell(row, idx[colCategoryFullName])),
			Coarse:     normalize.Value(cell(row, idx[colCategoryCoarse])),
			DetailDesc: normalize.Value(cell(row, idx[colCategoryDetailDesc])),
			SourceCode: normalize.Value(cell(row, idx[colCategorySourceCode])),
			ERPDetail:  normalize.Value(cell(row, idx[colCategoryERPDetail])),
		}
		if e.FullName == "" && e.SourceCode == "" && e.ERPDetail == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func containsAny(s string, tokens []string) bool {
	s = strings.ToLower(s)
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
