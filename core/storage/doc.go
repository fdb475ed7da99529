// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so input tables and rule books can be read from a bucket
// and reports written back. The Client interface is mocked in core/storage/mocks for
// unit tests; it works against AWS S3 and self-hosted MinIO alike.
//
// # Helpers
//
//   - EnsureBucket: creates the bucket on first use.
//   - ReadObject: downloads a whole object; workbook parsing needs random access.
//   - WriteObject: uploads a report.
//   - ListNames: lists workbook and CSV objects under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.ReadObject(ctx, client, cfg.Storage.Bucket, "inputs/erp.xlsx")
package storage
