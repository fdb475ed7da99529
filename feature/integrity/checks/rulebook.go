package checks

import (
	"bytes"
	"context"
	"fmt"

	"asset-reconciler/core/rules"
	"asset-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// RuleBookReport describes whether the configured rule book can drive a run.
type RuleBookReport struct {
	Object    string   `json:"object"`
	Present   bool     `json:"present"`
	Rules     int      `json:"rules"`
	KeyFields []string `json:"key_fields"`
	Warnings  []string `json:"warnings"`
	Errors    []string `json:"errors"`
	Status    string   `json:"status"` // "ok", "warning", "error"
}

// CheckRuleBook loads object from the bucket and reports problems a run would hit.
// A missing or invalid book, including one without a primary key, is reported rather
// than returned as an error.
func CheckRuleBook(ctx context.Context, client storage.Client, bucket, object string, sheets rules.Sheets) (*RuleBookReport, error) {
	report := &RuleBookReport{
		Object:    object,
		KeyFields: []string{},
		Warnings:  []string{},
		Errors:    []string{},
		Status:    "ok",
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: object, MaxKeys: 1}) {
		if obj.Err == nil && obj.Key == object {
			report.Present = true
		}
		break
	}
	if !report.Present {
		report.Errors = append(report.Errors, fmt.Sprintf("rule book %s not found", object))
		report.Status = "error"
		return report, nil
	}

	data, err := storage.ReadObject(ctx, client, bucket, object)
	if err != nil {
		return nil, err
	}

	book, err := rules.LoadNamed(object, bytes.NewReader(data), sheets)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		report.Status = "error"
		return report, nil
	}

	report.Rules = book.Rules.Len()
	report.KeyFields = append(report.KeyFields, book.Rules.KeyFields()...)
	report.Warnings = append(report.Warnings, book.Warnings...)

	if len(report.Warnings) > 0 {
		report.Status = "warning"
	}
	return report, nil
}
