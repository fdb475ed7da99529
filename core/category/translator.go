package category

import (
	"sync"

	"asset-reconciler/core/normalize"
)

// DefaultPrefixWidth is the number of leading characters of a category code that are compared.
const DefaultPrefixWidth = 4

// Entry is one row of the asset category mapping sheet.
type Entry struct {
	// FullName is the platform's full taxonomy name.
	FullName string `json:"full_name"`
	// Coarse is the catalogue's top-level category.
	Coarse string `json:"coarse"`
	// DetailDesc is the ERP detail class description.
	DetailDesc string `json:"detail_desc"`
	// SourceCode is the platform catalogue code.
	SourceCode string `json:"source_code"`
	// ERPDetail is the ERP detail class code.
	ERPDetail string `json:"erp_detail"`
}

// Description is the reference-side label synthesized from the coarse category and detail description.
func (e Entry) Description() string {
	return e.Coarse + "-" + e.DetailDesc
}

// Options tunes a Translator.
type Options struct {
	// PrefixWidth is the code prefix length in runes. Zero means DefaultPrefixWidth.
	PrefixWidth int
}

// Translator reduces platform category names and reference category descriptions
// to comparable code prefixes.
//
// Forward and reverse lookups are kept in two maps per side so that a report can show
// the original value next to each code. A Translator is used by one run; the reverse
// maps are guarded so the I/O stage and the engine may share it.
type Translator struct {
	width   int
	byName  map[string][]Entry
	byDesc  map[string]Entry
	mu      sync.Mutex
	platRev map[string]string
	refRev  map[string]string
}

// NewTranslator indexes entries by full name and by synthesized description.
// When several entries share a description the first one wins.
func NewTranslator(entries []Entry, opts Options) *Translator {
	width := opts.PrefixWidth
	if width <= 0 {
		width = DefaultPrefixWidth
	}
	t := &Translator{
		width:   width,
		byName:  make(map[string][]Entry),
		byDesc:  make(map[string]Entry),
		platRev: make(map[string]string),
		refRev:  make(map[string]string),
	}
	for _, e := range entries {
		if e.FullName != "" {
			t.byName[e.FullName] = append(t.byName[e.FullName], e)
		}
		desc := e.Description()
		if _, ok := t.byDesc[desc]; !ok {
			t.byDesc[desc] = e
		}
	}
	return t
}

// Empty reports whether the translator has no mapping entries.
func (t *Translator) Empty() bool {
	return len(t.byName) == 0 && len(t.byDesc) == 0
}

// Candidates returns the mapping entries for a platform full name.
func (t *Translator) Candidates(name string) []Entry {
	return t.byName[name]
}

// TranslatePlatform maps a platform category name to a code prefix.
//
// With one candidate its source code prefix is used. With several, the first candidate
// whose Description appears in observed wins, falling back to the first candidate.
// Unknown names are returned unchanged.
func (t *Translator) TranslatePlatform(value string, observed map[string]struct{}) string {
	if value == "" {
		return ""
	}
	cands := t.byName[value]
	if len(cands) == 0 {
		return value
	}
	chosen := cands[0]
	if len(cands) > 1 {
		for _, c := range cands {
			if _, ok := observed[c.Description()]; ok {
				chosen = c
				break
			}
		}
	}
	code := normalize.Prefix(chosen.SourceCode, t.width)
	t.mu.Lock()
	t.platRev[code] = value
	t.mu.Unlock()
	return code
}

// TranslateReference maps a reference category description to the ERP detail code
// prefix, or to the prefix of the raw value when the description is unknown.
func (t *Translator) TranslateReference(value string) string {
	if value == "" {
		return ""
	}
	code := normalize.Prefix(value, t.width)
	if e, ok := t.byDesc[value]; ok {
		code = normalize.Prefix(e.ERPDetail, t.width)
	}
	t.mu.Lock()
	t.refRev[code] = value
	t.mu.Unlock()
	return code
}

// PlatformOriginals returns a copy of the code -> platform value map.
func (t *Translator) PlatformOriginals() map[string]string {
	return t.copyOf(t.platRev)
}

// ReferenceOriginals returns a copy of the code -> reference value map.
func (t *Translator) ReferenceOriginals() map[string]string {
	return t.copyOf(t.refRev)
}

func (t *Translator) copyOf(m map[string]string) map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
