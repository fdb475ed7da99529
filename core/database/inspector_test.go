package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE staged_rows (id INTEGER PRIMARY KEY, row_key TEXT NOT NULL, payload TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "staged_rows")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}
	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "NO", colMap["row_key"].Null)
	assert.Equal(t, "YES", colMap["payload"].Null)

	// PRAGMA table_info returns an empty result for an unknown table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "BIGINT(20) UNSIGNED", "NO", "PRI", nil, "auto_increment")
	rows.AddRow("Row_Key", "VARCHAR(512)", "NO", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `staged_rows`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "staged_rows")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "row_key", columns[1].Field)
	assert.Equal(t, "varchar(512)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"})
	rows.AddRow("id", "bigint", "NO", "PRI", nil, "")
	rows.AddRow("row_key", "varchar(512)", "NO", "MUL", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `staged_rows`").WillReturnRows(rows)

	missing, err := MissingColumns(db, "staged_rows", "id", "row_key", "payload")
	require.NoError(t, err)
	assert.Equal(t, []string{"payload"}, missing)
}
