package compare

import (
	"strings"

	"asset-reconciler/core/normalize"
)

func textEqual(a, b string, cfg *FieldConfig) bool {
	if normalize.Fold(a) == normalize.Fold(b) {
		return true
	}
	p := cfg.Profile
	return p != nil && p.BooleanEverywhere && synonymEqual(a, b, p.BooleanSynonyms)
}

// lastSegment returns the part after the final sep, or s when sep is absent.
func lastSegment(s, sep string) string {
	if sep == "" {
		return strings.TrimSpace(s)
	}
	if i := strings.LastIndex(s, sep); i >= 0 {
		return strings.TrimSpace(s[i+len(sep):])
	}
	return strings.TrimSpace(s)
}

// regulatoryEqual compares "运维\输电" on the platform side with "01-输电" on the reference side.
func regulatoryEqual(a, b string, cfg *FieldConfig) bool {
	return lastSegment(a, cfg.Profile.RegulatoryPlatformSep) == lastSegment(b, cfg.Profile.RegulatoryReferenceSep)
}

func booleanEqual(a, b string, cfg *FieldConfig) bool {
	return synonymEqual(a, b, cfg.Profile.BooleanSynonyms)
}

func depreciationMethodEqual(a, b string, cfg *FieldConfig) bool {
	if synonymEqual(a, b, cfg.Profile.DepreciationMethodSynonyms) {
		return true
	}
	return textEqual(a, b, cfg)
}

// enumEqual maps the platform name to its code. Unknown names are compared as is.
func enumEqual(a, b string, cfg *FieldConfig) bool {
	if a == b {
		return true
	}
	return cfg.Enum.Code(a) == b
}

// categoryEqual compares the category codes both sides were translated to.
func categoryEqual(a, b string, _ *FieldConfig) bool {
	return a == b
}

// comboEqual accepts the reference value only when it is listed for the platform value.
// A platform value with no entry never matches, even against the same text.
func comboEqual(a, b string, cfg *FieldConfig) bool {
	return cfg.Combo.Allows(a, b)
}
