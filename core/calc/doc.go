// Package calc evaluates the calculation expressions that derive reference-table fields.
//
// Three forms are supported:
//
//   - Substring: "WBS编码[:12]" keeps the first 12 characters of the field.
//   - Concatenation (text and date rules): "公司代码+资产编码" joins fields in order.
//   - Arithmetic (numeric rules): "累计购置值-累计折旧额" or "使用年限+使用期间/12".
//
// Arithmetic operands are coerced to decimals, non-numeric cells count as zero and
// fields whose name contains a depreciation token are made absolute first. A division
// by zero leaves the cell empty.
//
// Evaluated values are collected in a Derived side table and merged into the
// reference table once all calculations are done.
package calc
