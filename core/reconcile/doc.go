// Package reconcile runs a comparison between a platform table and a reference table.
//
// # Pipeline
//
// Engine.Run works on copies of both tables:
//
//  1. Column names are normalized and every rule field is checked on both sides.
//  2. Calculated reference fields are evaluated into a side table; a failing field is
//     skipped with a warning, a failing key field aborts the run.
//  3. Reference columns are renamed to platform names and calculated values merged.
//  4. Category names are translated to comparable codes on both sides.
//  5. Composite keys are built and validated; duplicates abort, blanks warn.
//  6. Keys are partitioned into missing, extra and common; common rows are compared.
//  7. Counts are aggregated and full rows collected for the report, from the session's
//     staging store when it has one.
//
// LoadTables reads both inputs concurrently before the run. BookCache keeps parsed rule
// books for repeated runs.
//
// # Usage
//
//	book, err := rules.Load("rules.xlsx", rules.DefaultSheets())
//	engine, err := reconcile.NewEngine(book, reconcile.Options{})
//	platform, reference, err := reconcile.LoadTables(ctx, platformSrc, referenceSrc)
//
//	sess := session.New(log)
//	defer sess.Close()
//	result, err := engine.Run(ctx, sess, platform, reference)
package reconcile
