package compare

import (
	"strings"
	"time"

	"asset-reconciler/core/rules"
)

// dateLayouts are tried in order. Two-digit years come last so four-digit forms win.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006年1月2日",
	"1-2-2006",
	"1/2/2006",
	"20060102",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006.1.2",
	"2006年1月",
	"2006-1",
	"1-2-06",
	"1/2/06",
}

// parseDate returns the canonical YYYY-MM-DD form and true, or the raw string and false
// when no layout matches.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return s, false
}

type dateCell struct {
	s  string
	ok bool
}

func truncate(canonical string, g rules.Granularity) string {
	switch g {
	case rules.Month:
		return canonical[:7]
	case rules.Year:
		return canonical[:4]
	}
	return canonical
}

func parseDateCell(s string, g rules.Granularity) dateCell {
	v, ok := parseDate(s)
	if ok {
		v = truncate(v, g)
	}
	return dateCell{s: v, ok: ok}
}

// datesEqual compares truncated dates. An unparseable value is kept raw, so it only
// equals another parsed value by accident; two unparseable values are equal only when
// both are blank.
func datesEqual(a, b dateCell) bool {
	if !a.ok && !b.ok {
		return a.s == "" && b.s == ""
	}
	return a.s == b.s
}

func dateEqual(a, b string, cfg *FieldConfig) bool {
	g := cfg.Rule.Granularity
	return datesEqual(parseDateCell(a, g), parseDateCell(b, g))
}

func dateColumn(col []string, g rules.Granularity) []dateCell {
	out := make([]dateCell, len(col))
	for i, s := range col {
		out[i] = parseDateCell(s, g)
	}
	return out
}
