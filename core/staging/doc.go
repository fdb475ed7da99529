// Package staging keeps the rows of a run in a database table keyed by composite key.
//
// The engine stages both mapped tables when a session owns a store and reads full-row
// context for missing, extra and differing keys back in chunks. Rows are removed when
// the session closes.
package staging
