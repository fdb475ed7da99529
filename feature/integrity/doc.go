// Package integrity checks that the reconciliation workspace is usable before a run.
//
// # Checks Provided
//
//   - Structure: the rules, inputs and reports folders exist in the bucket.
//   - Rules: the configured rule book loads, marks a primary key and has no skipped rows.
//   - Staging: the staging table carries the columns staged runs read and write.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/rules : Runs rule book check (supports ?object=).
//   - GET /integrity/staging : Runs staging schema check.
package integrity
