// Package report renders a reconciliation result for people and for machines.
//
// WriteWorkbook produces an xlsx file with four sheets:
//
//	汇总      summary counts, skipped fields and warnings
//	ERP缺失   platform rows whose key is absent from the ERP table
//	ERP多出   ERP rows whose key is absent from the platform table
//	差异明细  a platform row and an ERP row per differing key, differing cells filled
//
// WriteJSON encodes the same result as a Document.
package report
