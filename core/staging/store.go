package staging

import (
	"context"
	"encoding/json"
	"fmt"

	"asset-reconciler/core/database"
	"asset-reconciler/core/normalize"
	"asset-reconciler/core/table"

	"gorm.io/gorm"
)

const (
	// DefaultBatchSize is the number of rows inserted per statement.
	DefaultBatchSize = 500
	// DefaultChunkSize bounds the IN list of a key lookup; SQLite allows 999 variables.
	DefaultChunkSize = 500
)

// StagedRow is one table row keyed by its encoded composite key.
type StagedRow struct {
	ID       uint   `gorm:"primaryKey"`
	RunID    string `gorm:"size:64;not null;index:idx_staged_lookup,priority:1"`
	Side     string `gorm:"size:32;not null;index:idx_staged_lookup,priority:2"`
	RowKey   string `gorm:"size:512;not null;index:idx_staged_lookup,priority:3"`
	Position int    `gorm:"not null"`
	Payload  string `gorm:"type:text"`
}

// TableName pins the table name regardless of naming strategy.
func (StagedRow) TableName() string { return "staged_rows" }

// Columns lists the columns the store reads and writes.
var Columns = []string{"run_id", "side", "row_key", "position", "payload"}

// Store stages the rows of one run so full-row context can be fetched by key.
type Store struct {
	db        *gorm.DB
	runID     string
	batchSize int
	chunkSize int
}

// New migrates the staging table and verifies its columns.
func New(db *gorm.DB, runID string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("staging store requires a database")
	}
	if err := db.AutoMigrate(&StagedRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate staging table: %w", err)
	}
	missing, err := database.MissingColumns(db, StagedRow{}.TableName(), Columns...)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("staging table is missing columns %v", missing)
	}
	return &Store{db: db, runID: runID, batchSize: DefaultBatchSize, chunkSize: DefaultChunkSize}, nil
}

// RunID returns the run the store belongs to.
func (s *Store) RunID() string { return s.runID }

// Stage writes every row of t whose key is not empty. keys holds one encoded key per row.
// Cell values are stored in their normalized text form.
func (s *Store) Stage(ctx context.Context, side string, t *table.Table, keys []string) error {
	if len(keys) != t.Len() {
		return fmt.Errorf("stage %s: %d keys for %d rows", side, len(keys), t.Len())
	}
	rows := make([]StagedRow, 0, len(keys))
	for i, r := range t.Rows {
		if keys[i] == "" {
			continue
		}
		cells := make(map[string]string, len(r))
		for col, v := range r {
			cells[col] = normalize.Value(v)
		}
		payload, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("stage %s row %d: %w", side, i, err)
		}
		rows = append(rows, StagedRow{RunID: s.runID, Side: side, RowKey: keys[i], Position: i, Payload: string(payload)})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, s.batchSize).Error; err != nil {
		return fmt.Errorf("stage %s: %w", side, err)
	}
	return nil
}

// FetchByKeys returns the staged rows of side for the given keys. Unknown keys are absent
// from the result.
func (s *Store) FetchByKeys(ctx context.Context, side string, keys []string) (map[string]table.Record, error) {
	out := make(map[string]table.Record, len(keys))
	for start := 0; start < len(keys); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(keys) {
			end = len(keys)
		}
		var rows []StagedRow
		err := s.db.WithContext(ctx).
			Where("run_id = ? AND side = ? AND row_key IN ?", s.runID, side, keys[start:end]).
			Order("position").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("fetch %s rows: %w", side, err)
		}
		for _, r := range rows {
			var cells map[string]string
			if err := json.Unmarshal([]byte(r.Payload), &cells); err != nil {
				return nil, fmt.Errorf("decode %s row %d: %w", side, r.Position, err)
			}
			rec := make(table.Record, len(cells))
			for k, v := range cells {
				rec[k] = v
			}
			out[r.RowKey] = rec
		}
	}
	return out, nil
}

// Count returns the number of staged rows of side.
func (s *Store) Count(ctx context.Context, side string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&StagedRow{}).Where("run_id = ? AND side = ?", s.runID, side).Count(&n).Error
	return n, err
}

// Close deletes every row staged by the run.
func (s *Store) Close() error {
	if err := s.db.Where("run_id = ?", s.runID).Delete(&StagedRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear staged rows: %w", err)
	}
	return nil
}
