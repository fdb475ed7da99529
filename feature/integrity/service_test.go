package integrity

import (
	"bytes"
	"context"
	"io"
	"testing"

	"asset-reconciler/core/storage/mocks"
	"asset-reconciler/feature/compare"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const bookYAML = `rules:
  - source: 资产编号
    primary_key: true
`

// setupMockDB creates a mock GORM DB for testing.
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

func testConfig() compare.Config {
	return compare.Config{
		RulesObject:  "rules/rules.yaml",
		InputPrefix:  "inputs/",
		ReportPrefix: "reports/",
	}
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func listing(key string) func() <-chan minio.ObjectInfo {
	return func() <-chan minio.ObjectInfo {
		ch := make(chan minio.ObjectInfo, 1)
		ch <- minio.ObjectInfo{Key: key}
		close(ch)
		return ch
	}
}

func TestService_Structure(t *testing.T) {
	mockClient := new(mocks.Client)
	logger := zap.NewNop()
	svc := NewService(mockClient, "reconcile", logger, nil, testConfig())

	assert.Equal(t, []string{"rules", "inputs", "reports"}, svc.Folders())

	t.Run("CheckStructure", func(t *testing.T) {
		mockClient.On("BucketExists", mock.Anything, "reconcile").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "reconcile", mock.Anything).Return(emptyListing)

		missing, err := svc.CheckStructure(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, []string{"rules", "inputs", "reports"}, missing)
	})

	t.Run("FixStructure", func(t *testing.T) {
		mockClient.On("PutObject", mock.Anything, "reconcile", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
		err := svc.FixStructure(context.Background(), []string{"inputs"})
		assert.NoError(t, err)
		mockClient.AssertCalled(t, "PutObject", mock.Anything, "reconcile", "inputs/", mock.Anything, int64(0), mock.Anything)
	})
}

func TestService_RuleBook(t *testing.T) {
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "reconcile", zap.NewNop(), nil, testConfig())

	mockClient.On("BucketExists", mock.Anything, "reconcile").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "reconcile", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
		return opts.Prefix == "rules/rules.yaml"
	})).Return(listing("rules/rules.yaml"))
	mockClient.On("ListObjects", mock.Anything, "reconcile", mock.Anything).Return(emptyListing)
	mockClient.On("GetObject", mock.Anything, "reconcile", "rules/rules.yaml", mock.Anything).
		Return(func() io.ReadCloser { return io.NopCloser(bytes.NewReader([]byte(bookYAML))) }, nil)

	t.Run("Configured Book", func(t *testing.T) {
		report, err := svc.CheckRuleBook(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "rules/rules.yaml", report.Object)
		assert.Equal(t, "ok", report.Status)
	})

	t.Run("Named Book", func(t *testing.T) {
		report, err := svc.CheckRuleBook(context.Background(), "rules/old.yaml")
		require.NoError(t, err)
		assert.Equal(t, "rules/old.yaml", report.Object)
		assert.False(t, report.Present)
	})
}

func TestService_Staging(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		svc := NewService(new(mocks.Client), "reconcile", zap.NewNop(), nil, testConfig())

		report, err := svc.CheckStaging()
		require.NoError(t, err)
		assert.Equal(t, "disabled", report.Status)
	})

	t.Run("Configured", func(t *testing.T) {
		db, sqlMock := setupMockDB(t)
		svc := NewService(new(mocks.Client), "reconcile", zap.NewNop(), db, testConfig())

		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
			AddRow("run_id", "varchar(64)", "NO", "MUL", nil, "").
			AddRow("side", "varchar(32)", "NO", "", nil, "").
			AddRow("row_key", "varchar(512)", "NO", "", nil, "").
			AddRow("position", "bigint", "NO", "", nil, "").
			AddRow("payload", "text", "YES", "", nil, "")
		sqlMock.ExpectQuery("SHOW COLUMNS FROM `staged_rows`").WillReturnRows(rows)

		report, err := svc.CheckStaging()
		require.NoError(t, err)
		assert.Equal(t, "ok", report.Status)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}
