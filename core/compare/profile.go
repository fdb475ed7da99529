package compare

import (
	"asset-reconciler/core/calc"
	"asset-reconciler/core/rules"
)

// Synonym is a pair of values from the two vocabularies that mean the same thing.
type Synonym struct {
	Platform  string `mapstructure:"platform" yaml:"platform"`
	Reference string `mapstructure:"reference" yaml:"reference"`
}

// Profile names the fields that get special text treatment and the synonym tables they use.
// The defaults reproduce the standard asset ledger rule book.
type Profile struct {
	// RegulatoryField compares only the last path segment of each side.
	RegulatoryField string
	// RegulatoryPlatformSep splits the platform value.
	RegulatoryPlatformSep string
	// RegulatoryReferenceSep splits the reference value.
	RegulatoryReferenceSep string

	// BooleanFields use BooleanSynonyms. When empty and BooleanEverywhere is set,
	// every text field accepts the synonyms.
	BooleanFields     []string
	BooleanEverywhere bool
	BooleanSynonyms   []Synonym

	// DepreciationMethodField accepts DepreciationMethodSynonyms.
	DepreciationMethodField    string
	DepreciationMethodSynonyms []Synonym

	// EnumField translates the platform name through the enum sheet before comparing.
	EnumField string

	// CategoryField holds category codes produced by the category translator.
	CategoryField string

	// ComboFields accept any reference value listed for the platform value in the combination sheet.
	ComboFields []string

	// DepreciationTokens mark numeric fields compared by absolute value.
	DepreciationTokens []string
}

// DefaultProfile returns the field names and synonym tables of the standard rule book.
func DefaultProfile() Profile {
	return Profile{
		RegulatoryField:        "监管资产属性",
		RegulatoryPlatformSep:  `\`,
		RegulatoryReferenceSep: "-",
		BooleanEverywhere:      true,
		BooleanSynonyms: []Synonym{
			{Platform: "是", Reference: "Y"},
			{Platform: "否", Reference: "N"},
		},
		DepreciationMethodField: "折旧方法",
		DepreciationMethodSynonyms: []Synonym{
			{Platform: "年限平均法", Reference: "直线法"},
		},
		EnumField:          "线站电压等级",
		CategoryField:      "资产分类",
		ComboFields:        []string{"关联实物管理系统"},
		DepreciationTokens: append([]string(nil), calc.DefaultDepreciationTokens...),
	}
}

// CalcOptions returns the calculator options consistent with this profile.
func (p Profile) CalcOptions() calc.Options {
	return calc.Options{DepreciationTokens: p.DepreciationTokens}
}

// FieldConfig is the context handed to an equality strategy.
type FieldConfig struct {
	Rule    rules.Rule
	Profile *Profile
	Enum    rules.EnumMap
	Combo   rules.ComboMap
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// synonymEqual reports whether a and b are equal directly or through a synonym pair
// in either direction.
func synonymEqual(a, b string, pairs []Synonym) bool {
	if a == b {
		return true
	}
	for _, s := range pairs {
		if (a == s.Platform && b == s.Reference) || (a == s.Reference && b == s.Platform) {
			return true
		}
	}
	return false
}
