package checks

import (
	"fmt"

	"asset-reconciler/core/database"
	"asset-reconciler/core/staging"

	"gorm.io/gorm"
)

// StagingReport strictly types the result of a staging schema check.
type StagingReport struct {
	Table          string   `json:"table"`
	Exists         bool     `json:"exists"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
	Status         string   `json:"status"` // "ok", "missing", "error"
}

// CheckStaging verifies the staging table against the columns the store uses.
// A table that does not exist yet is created on the first staged run, so it is
// reported as "missing" rather than as an error.
func CheckStaging(db *gorm.DB) (*StagingReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	tableName := staging.StagedRow{}.TableName()
	report := &StagingReport{
		Table:          tableName,
		MissingColumns: []string{},
		Errors:         []string{},
		Status:         "ok",
	}

	cols, err := database.GetTableColumns(db, tableName)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
		report.Status = "error"
		return report, nil
	}
	if len(cols) == 0 {
		report.Status = "missing"
		return report, nil
	}
	report.Exists = true

	present := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		present[col.Field] = struct{}{}
	}
	for _, name := range staging.Columns {
		if _, ok := present[name]; !ok {
			report.MissingColumns = append(report.MissingColumns, name)
		}
	}
	if len(report.MissingColumns) > 0 {
		report.Status = "error"
	}
	return report, nil
}
