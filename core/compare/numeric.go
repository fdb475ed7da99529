package compare

import (
	"asset-reconciler/core/normalize"

	"github.com/shopspring/decimal"
)

// number is a parsed numeric cell. ok is false for NaN: blank or non-numeric text.
type number struct {
	v  decimal.Decimal
	ok bool
}

func parseNumber(s string, abs bool) number {
	d, ok := normalize.Decimal(s)
	if !ok {
		return number{}
	}
	if abs {
		d = d.Abs()
	}
	return number{v: d, ok: true}
}

// numbersEqual treats two NaN cells as equal and NaN against a number as a difference.
// The tolerance bound is inclusive.
func numbersEqual(a, b number, tol *decimal.Decimal) bool {
	if !a.ok || !b.ok {
		return a.ok == b.ok
	}
	if tol == nil {
		return a.v.Equal(b.v)
	}
	return a.v.Sub(b.v).Abs().LessThanOrEqual(*tol)
}

func (cfg *FieldConfig) absolute() bool {
	if cfg.Profile == nil {
		return false
	}
	return normalize.HasToken(cfg.Rule.SourceField, cfg.Profile.DepreciationTokens)
}

func numericEqual(a, b string, cfg *FieldConfig) bool {
	abs := cfg.absolute()
	return numbersEqual(parseNumber(a, abs), parseNumber(b, abs), cfg.Rule.NumericTolerance)
}

// numericColumn parses a whole column once.
func numericColumn(col []string, abs bool) []number {
	out := make([]number, len(col))
	for i, s := range col {
		out[i] = parseNumber(s, abs)
	}
	return out
}
