// Package compare exposes reconciliation runs over HTTP.
//
// Input tables and rule books live in the object storage bucket. Rule books are parsed
// once and cached for Config.CacheTTLSeconds. Each run gets its own session; with
// Config.Staging set and a database connected, rows are staged there for the run.
//
// # Routes
//
//	POST   /compare             compare two bucket objects
//	POST   /compare/upload      compare two uploaded files
//	GET    /compare/rules       show a parsed rule book
//	DELETE /compare/rules/cache drop a cached rule book
//	GET    /compare/inputs      list input tables
//
// Both compare routes return the workbook report instead of JSON when called with
// ?format=xlsx.
package compare
