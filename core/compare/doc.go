// Package compare decides whether two field values are equivalent.
//
// Every rule resolves to a strategy through a Registry keyed by data type and field
// name. Text fields have overrides for the regulatory attribute, boolean synonyms,
// depreciation method, enum codes, asset category and combination membership; numeric
// and date fields use tolerant and granularity-aware fallbacks. Two blank values are
// always equal.
package compare
