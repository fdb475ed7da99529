package compare

import (
	"strings"
	"time"

	corecompare "asset-reconciler/core/compare"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/sheet"
	"asset-reconciler/feature/report"
)

// Config holds configuration for comparison runs.
type Config struct {
	// RulesObject is the rule book used when a request names none.
	RulesObject string `mapstructure:"rules_object" default:"rules/比对规则.xlsx"`
	// InputPrefix is where input tables are listed from.
	InputPrefix string `mapstructure:"input_prefix" default:"inputs/"`
	// ReportPrefix is where saved reports are written.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports/"`

	// Rule book sheet names.
	RuleSheet     string `mapstructure:"rule_sheet" default:"比对规则"`
	EnumSheet     string `mapstructure:"enum_sheet" default:"枚举值-线站电压等级"`
	ComboSheet    string `mapstructure:"combo_sheet" default:"枚举值-关联实物管理系统代码及名称"`
	CategorySheet string `mapstructure:"category_sheet" default:"资产分类映射表"`

	// Input layout. An empty sheet selects the first worksheet.
	PlatformSheet     string `mapstructure:"platform_sheet" default:""`
	ReferenceSheet    string `mapstructure:"reference_sheet" default:""`
	PlatformSkipRows  int    `mapstructure:"platform_skip_rows" default:"0"`
	ReferenceSkipRows int    `mapstructure:"reference_skip_rows" default:"0"`
	HeaderRows        int    `mapstructure:"header_rows" default:"1"`

	// DepreciationTokens is a comma separated list of name fragments marking fields
	// compared by absolute value.
	DepreciationTokens      string `mapstructure:"depreciation_tokens" default:"折旧,depreciation"`
	RegulatoryField         string `mapstructure:"regulatory_field" default:"监管资产属性"`
	DepreciationMethodField string `mapstructure:"depreciation_method_field" default:"折旧方法"`
	EnumField               string `mapstructure:"enum_field" default:"线站电压等级"`
	CategoryField           string `mapstructure:"category_field" default:"资产分类"`
	ComboFields             string `mapstructure:"combo_fields" default:"关联实物管理系统"`
	// BooleanFields limits boolean synonyms to the listed fields; empty means every text field.
	BooleanFields string `mapstructure:"boolean_fields" default:""`

	CategoryPrefixWidth int `mapstructure:"category_prefix_width" default:"4"`
	CacheTTLSeconds     int `mapstructure:"cache_ttl_seconds" default:"300"`
	// Staging stages rows in the configured database during a run.
	Staging bool `mapstructure:"staging" default:"false"`

	Report report.Options `mapstructure:"report"`
}

// Sheets returns the rule book sheet names.
func (c Config) Sheets() rules.Sheets {
	return rules.Sheets{Rules: c.RuleSheet, Enum: c.EnumSheet, Combo: c.ComboSheet, Category: c.CategorySheet}
}

// Profile applies the configured field names to the default profile.
func (c Config) Profile() corecompare.Profile {
	p := corecompare.DefaultProfile()
	if c.RegulatoryField != "" {
		p.RegulatoryField = c.RegulatoryField
	}
	if c.DepreciationMethodField != "" {
		p.DepreciationMethodField = c.DepreciationMethodField
	}
	if c.EnumField != "" {
		p.EnumField = c.EnumField
	}
	if c.CategoryField != "" {
		p.CategoryField = c.CategoryField
	}
	if list := splitList(c.ComboFields); len(list) > 0 {
		p.ComboFields = list
	}
	if list := splitList(c.DepreciationTokens); len(list) > 0 {
		p.DepreciationTokens = list
	}
	if list := splitList(c.BooleanFields); len(list) > 0 {
		p.BooleanFields = list
		p.BooleanEverywhere = false
	}
	return p
}

// CacheTTL returns the rule book cache lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// PlatformOptions returns the read options of the platform table. A non-empty
// sheetName overrides the configured worksheet.
func (c Config) PlatformOptions(sheetName string) sheet.Options {
	if sheetName == "" {
		sheetName = c.PlatformSheet
	}
	return sheet.Options{Sheet: sheetName, SkipRows: c.PlatformSkipRows, HeaderRows: c.HeaderRows}
}

// ReferenceOptions returns the read options of the ERP table.
func (c Config) ReferenceOptions(sheetName string) sheet.Options {
	if sheetName == "" {
		sheetName = c.ReferenceSheet
	}
	return sheet.Options{Sheet: sheetName, SkipRows: c.ReferenceSkipRows, HeaderRows: c.HeaderRows}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
