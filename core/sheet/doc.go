// Package sheet reads input tables from spreadsheet workbooks and CSV exports.
//
// Workbooks are read with excelize. A header spans one row, or two rows where the first
// row holds merged group titles; group titles are carried right across the merged range
// and joined with the second row as "group-field". CSV exports from the ERP side arrive in
// UTF-8, UTF-16 or GB18030 and are decoded before parsing.
//
// FileSource and ObjectSource load a table from a local path or a bucket object and are
// used as reconcile sources.
package sheet
