package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	columnMarkers = regexp.MustCompile(`[\*\s]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// emptyTokens are literal cell contents that spreadsheet exports use for "no value".
var emptyTokens = map[string]struct{}{
	"none": {},
	"null": {},
	"nan":  {},
	"nat":  {},
	"<na>": {},
}

// ColumnName strips required-field asterisks and every whitespace character from a header cell.
func ColumnName(raw string) string {
	return columnMarkers.ReplaceAllString(raw, "")
}

// Value maps a raw cell to its canonical string form.
// nil, NaN, blank strings and None-like tokens all become "".
func Value(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return stringValue(v)
	case *string:
		if v == nil {
			return ""
		}
		return stringValue(*v)
	case float64:
		return floatValue(v)
	case float32:
		return floatValue(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case []byte:
		return stringValue(string(v))
	case interface{ String() string }:
		return stringValue(v.String())
	default:
		return ""
	}
}

// IsEmpty reports whether raw normalizes to the canonical empty value.
func IsEmpty(raw any) bool {
	return Value(raw) == ""
}

// Fold applies NFKC compatibility folding (full-width digits and letters become
// their ASCII forms) and collapses internal whitespace runs to a single space.
func Fold(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Decimal parses a cell as a decimal number. Thousands separators are ignored.
// ok is false for empty and non-numeric cells.
func Decimal(raw any) (d decimal.Decimal, ok bool) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	s := strings.ReplaceAll(Value(raw), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Prefix returns the first n runes of s. n <= 0 returns s unchanged.
func Prefix(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// HasToken reports whether name contains any of tokens, ignoring case.
func HasToken(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, t := range tokens {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func stringValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, ok := emptyTokens[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

func floatValue(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
