package rules

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/category"
	"asset-reconciler/core/normalize"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Sheets names the worksheets of a rule book.
type Sheets struct {
	Rules    string
	Enum     string
	Combo    string
	Category string
}

// DefaultSheets returns the sheet names used by the standard rule book template.
func DefaultSheets() Sheets {
	return Sheets{
		Rules:    "比对规则",
		Enum:     "枚举值-线站电压等级",
		Combo:    "枚举值-关联实物管理系统代码及名称",
		Category: "资产分类映射表",
	}
}

func (s Sheets) withDefaults() Sheets {
	d := DefaultSheets()
	if s.Rules == "" {
		s.Rules = d.Rules
	}
	if s.Enum == "" {
		s.Enum = d.Enum
	}
	if s.Combo == "" {
		s.Combo = d.Combo
	}
	if s.Category == "" {
		s.Category = d.Category
	}
	return s
}

// Book bundles everything read from a rule book.
type Book struct {
	Source     string
	Rules      *RuleSet
	Enum       EnumMap
	Combo      ComboMap
	Categories []category.Entry
	// Warnings lists skipped rows and absent optional sheets.
	Warnings []string
}

var affirmative = map[string]struct{}{
	"是": {}, "y": {}, "yes": {}, "true": {}, "1": {},
}

// IsAffirmative reports whether a primary-key cell marks the rule as a key.
func IsAffirmative(s string) bool {
	_, ok := affirmative[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ruleColumns names the positional columns of the rules sheet.
var ruleColumns = []string{"platformField", "referenceField", "dataType", "tolerance", "isPrimaryKey", "calcExpression"}

// checkRuleHeader requires a titled cell for every positional column.
func checkRuleHeader(header []string) error {
	var missing []string
	for i, name := range ruleColumns {
		if normalize.Value(cell(header, i)) == "" {
			missing = append(missing, fmt.Sprintf("%d (%s)", i+1, name))
		}
	}
	if len(missing) > 0 {
		return &apperrors.ConfigError{Reason: "rules sheet header lacks columns " + strings.Join(missing, ", ")}
	}
	return nil
}

// ParseRuleRows parses the rules sheet: a header row followed by rows of
// [platformField, referenceField, dataType, tolerance, isPrimaryKey, calcExpression].
// Rows lacking both field names are skipped and reported as warnings. A date rule
// with an unrecognized granularity falls back to day precision with a warning.
func ParseRuleRows(rows [][]string) (*RuleSet, []string, error) {
	if len(rows) == 0 {
		return nil, nil, &apperrors.ConfigError{Reason: "rules sheet is empty"}
	}
	if err := checkRuleHeader(rows[0]); err != nil {
		return nil, nil, err
	}

	var (
		parsed   []Rule
		warnings []string
	)
	for i, row := range rows[1:] {
		line := i + 2
		source := normalize.ColumnName(normalize.Value(cell(row, 0)))
		target := normalize.ColumnName(normalize.Value(cell(row, 1)))
		calc := normalize.Value(cell(row, 5))

		if source == "" && target == "" {
			if !blankRow(row) {
				warnings = append(warnings, fmt.Sprintf("row %d skipped: no platform or reference field", line))
			}
			continue
		}
		if source == "" {
			source = target
		}
		if target == "" && calc == "" {
			target = source
		}

		dt, err := ParseDataType(cell(row, 2))
		if err != nil {
			return nil, warnings, &apperrors.ConfigError{Reason: fmt.Sprintf("row %d (%s): %v", line, source, err)}
		}
		tol := normalize.Value(cell(row, 3))
		if dt == Date {
			if _, err := ParseGranularity(tol); err != nil {
				warnings = append(warnings, fmt.Sprintf("row %d (%s): %v, compared by day", line, source, err))
			}
		}

		parsed = append(parsed, Rule{
			SourceField:    source,
			TargetField:    target,
			DataType:       dt,
			Tolerance:      tol,
			IsPrimaryKey:   IsAffirmative(cell(row, 4)),
			CalcExpression: calc,
			Order:          len(parsed),
		})
	}

	set, err := NewRuleSet(parsed)
	if err != nil {
		return nil, warnings, &apperrors.ConfigError{Reason: err.Error()}
	}
	if len(set.PrimaryKeys()) == 0 {
		return nil, warnings, &apperrors.ConfigError{Reason: "no primary key rule declared"}
	}
	return set, warnings, nil
}

// Load reads a rule book from disk. .xlsx files are read as workbooks and
// .yaml/.yml files as YAML rule documents.
func Load(path string, sheets Sheets) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &apperrors.ConfigError{Source: path, Reason: err.Error()}
	}
	defer f.Close()
	return LoadNamed(path, f, sheets)
}

// LoadNamed reads a rule book from r, choosing the format from the extension of name.
// name becomes the book's Source.
func LoadNamed(name string, r io.Reader, sheets Sheets) (*Book, error) {
	var (
		book *Book
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		book, err = LoadBook(r, sheets)
	case ".yaml", ".yml":
		book, err = LoadYAML(r)
	default:
		return nil, &apperrors.ConfigError{Source: name, Reason: apperrors.ErrUnsupportedExt.Error()}
	}
	if err != nil {
		if ce, ok := err.(*apperrors.ConfigError); ok && ce.Source == "" {
			ce.Source = name
		}
		return nil, err
	}
	book.Source = name
	return book, nil
}

// LoadBook reads a rule workbook from r. The rules sheet is required; the enum,
// combination and category sheets are optional.
func LoadBook(r io.Reader, sheets Sheets) (*Book, error) {
	sheets = sheets.withDefaults()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &apperrors.ConfigError{Reason: fmt.Sprintf("cannot open rule workbook: %v", err)}
	}
	defer f.Close()

	rows, ok, err := sheetRows(f, sheets.Rules)
	if err != nil {
		return nil, &apperrors.ConfigError{Sheet: sheets.Rules, Reason: err.Error()}
	}
	if !ok {
		return nil, &apperrors.ConfigError{Sheet: sheets.Rules, Reason: "rules sheet not found"}
	}
	set, warnings, err := ParseRuleRows(rows)
	if err != nil {
		if ce, ok := err.(*apperrors.ConfigError); ok {
			ce.Sheet = sheets.Rules
		}
		return nil, err
	}

	book := &Book{Rules: set, Enum: EnumMap{}, Combo: ComboMap{}, Warnings: warnings}

	if rows, ok, err := sheetRows(f, sheets.Enum); err != nil {
		return nil, &apperrors.ConfigError{Sheet: sheets.Enum, Reason: err.Error()}
	} else if ok {
		book.Enum = ParseEnumRows(rows)
	} else {
		book.Warnings = append(book.Warnings, fmt.Sprintf("optional sheet %q not found", sheets.Enum))
	}

	if rows, ok, err := sheetRows(f, sheets.Combo); err != nil {
		return nil, &apperrors.ConfigError{Sheet: sheets.Combo, Reason: err.Error()}
	} else if ok {
		book.Combo = ParseComboRows(rows)
	} else {
		book.Warnings = append(book.Warnings, fmt.Sprintf("optional sheet %q not found", sheets.Combo))
	}

	if rows, ok, err := sheetRows(f, sheets.Category); err != nil {
		return nil, &apperrors.ConfigError{Sheet: sheets.Category, Reason: err.Error()}
	} else if ok {
		entries, err := ParseCategoryRows(rows)
		if err != nil {
			if ce, ok := err.(*apperrors.ConfigError); ok {
				ce.Sheet = sheets.Category
			}
			return nil, err
		}
		book.Categories = entries
	} else {
		book.Warnings = append(book.Warnings, fmt.Sprintf("optional sheet %q not found", sheets.Category))
	}

	return book, nil
}

func sheetRows(f *excelize.File, name string) ([][]string, bool, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, false, err
	}
	if idx < 0 {
		return nil, false, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, true, err
	}
	return rows, true, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// yamlBook is the YAML form of a rule book.
type yamlBook struct {
	Rules []struct {
		Source     string `yaml:"source"`
		Target     string `yaml:"target"`
		Type       string `yaml:"type"`
		Tolerance  string `yaml:"tolerance"`
		PrimaryKey bool   `yaml:"primary_key"`
		Calc       string `yaml:"calc"`
	} `yaml:"rules"`
	Enum       map[string]string   `yaml:"enum"`
	Combo      map[string][]string `yaml:"combo"`
	Categories []struct {
		FullName   string `yaml:"full_name"`
		Coarse     string `yaml:"coarse"`
		DetailDesc string `yaml:"detail_desc"`
		SourceCode string `yaml:"source_code"`
		ERPDetail  string `yaml:"erp_detail"`
	} `yaml:"categories"`
}

// LoadYAML reads a rule book expressed as YAML. It produces the same Book as the
// workbook form and is validated the same way.
func LoadYAML(r io.Reader) (*Book, error) {
	var doc yamlBook
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &apperrors.ConfigError{Reason: fmt.Sprintf("invalid rule document: %v", err)}
	}

	rows := [][]string{ruleColumns}
	for _, r := range doc.Rules {
		pk := ""
		if r.PrimaryKey {
			pk = "是"
		}
		rows = append(rows, []string{r.Source, r.Target, r.Type, r.Tolerance, pk, r.Calc})
	}
	set, warnings, err := ParseRuleRows(rows)
	if err != nil {
		return nil, err
	}

	book := &Book{Rules: set, Enum: EnumMap{}, Combo: ComboMap{}, Warnings: warnings}
	for name, code := range doc.Enum {
		book.Enum[strings.TrimSpace(name)] = strings.TrimSpace(code)
	}
	for key, values := range doc.Combo {
		book.Combo.Add(strings.TrimSpace(key), values...)
	}
	for _, c := range doc.Categories {
		book.Categories = append(book.Categories, category.Entry{
			FullName:   c.FullName,
			Coarse:     c.Coarse,
			DetailDesc: c.DetailDesc,
			SourceCode: c.SourceCode,
			ERPDetail:  c.ERPDetail,
		})
	}
	return book, nil
}
