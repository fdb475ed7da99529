// Package normalize canonicalizes column names and cell values before any comparison.
//
// Every equality test in the engine runs on the output of Value, so that
// nil, NaN, blank strings and tokens such as "None" or "nan" all collapse
// to the same empty string. Value is idempotent.
package normalize
