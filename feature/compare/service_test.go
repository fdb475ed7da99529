package compare_test

import (
	"context"
	"testing"

	"asset-reconciler/core/apperrors"
	"asset-reconciler/core/database"
	"asset-reconciler/core/rules"
	"asset-reconciler/feature/compare"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_Compare(t *testing.T) {
	m := newBucket(defaultObjects())
	svc := compare.NewService(m, bucket, zap.NewNop(), nil, testConfig())

	out, err := svc.Compare(context.Background(), compare.Request{
		Platform:  "inputs/platform.csv",
		Reference: "inputs/erp.csv",
	})
	require.NoError(t, err)

	s := out.Result.Summary
	assert.Equal(t, 3, s.PlatformRows)
	assert.Equal(t, 1, s.MissingCount)
	assert.Equal(t, 1, s.ExtraCount)
	assert.Equal(t, 2, s.CommonCount)
	assert.Equal(t, 1, s.DifferingCount)
	require.Len(t, out.Result.Diffs, 1)
	assert.Equal(t, "A2", out.Result.Diffs[0].Key)
	assert.Equal(t, "原值", out.Result.Diffs[0].Fields[0].Field)
	assert.Empty(t, out.ReportObject)
	assert.Len(t, out.Rules, 3)
	m.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SaveReport(t *testing.T) {
	m := newBucket(defaultObjects())
	svc := compare.NewService(m, bucket, zap.NewNop(), nil, testConfig())

	out, err := svc.Compare(context.Background(), compare.Request{
		Platform:   "inputs/platform.csv",
		Reference:  "inputs/erp.csv",
		SaveReport: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "reports/"+out.Result.RunID+".xlsx", out.ReportObject)
	m.AssertCalled(t, "PutObject", mock.Anything, bucket, out.ReportObject, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Staging(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Staging = true
	svc := compare.NewService(newBucket(defaultObjects()), bucket, zap.NewNop(), db, cfg)

	out, err := svc.Compare(context.Background(), compare.Request{Platform: "inputs/platform.csv", Reference: "inputs/erp.csv"})
	require.NoError(t, err)
	require.Len(t, out.Result.Missing, 1)
	assert.Equal(t, "电缆", out.Result.Missing[0].Row["资产名称"])

	var left int64
	require.NoError(t, db.Table("staged_rows").Count(&left).Error)
	assert.Zero(t, left, "session close removes staged rows")
}

func TestService_Errors(t *testing.T) {
	svc := compare.NewService(newBucket(defaultObjects()), bucket, zap.NewNop(), nil, testConfig())
	ctx := context.Background()

	t.Run("Missing Inputs", func(t *testing.T) {
		_, err := svc.Compare(ctx, compare.Request{Platform: "inputs/platform.csv"})
		assert.ErrorIs(t, err, compare.ErrInvalidRequest)
	})

	t.Run("Missing Object", func(t *testing.T) {
		_, err := svc.Compare(ctx, compare.Request{Platform: "inputs/platform.csv", Reference: "inputs/gone.csv"})
		assert.ErrorContains(t, err, "gone.csv")
	})

	t.Run("Unknown Rule Book", func(t *testing.T) {
		_, err := svc.Compare(ctx, compare.Request{Platform: "inputs/platform.csv", Reference: "inputs/erp.csv", Rules: "rules/none.yaml"})
		assert.Error(t, err)
	})
}

func TestService_SchemaError(t *testing.T) {
	objects := defaultObjects()
	objects["inputs/erp.csv"] = "资产编号,原值\nA1,1\n"
	svc := compare.NewService(newBucket(objects), bucket, zap.NewNop(), nil, testConfig())

	_, err := svc.Compare(context.Background(), compare.Request{Platform: "inputs/platform.csv", Reference: "inputs/erp.csv"})
	assert.ErrorIs(t, err, apperrors.ErrSchema)
}

func TestService_BookIsCached(t *testing.T) {
	m := newBucket(defaultObjects())
	svc := compare.NewService(m, bucket, zap.NewNop(), nil, testConfig())
	ctx := context.Background()

	first, err := svc.Book(ctx, "")
	require.NoError(t, err)
	second, err := svc.Book(ctx, "rules/rules.yaml")
	require.NoError(t, err)
	assert.Same(t, first, second)
	m.AssertNumberOfCalls(t, "GetObject", 1)

	svc.InvalidateRules("")
	_, err = svc.Book(ctx, "")
	require.NoError(t, err)
	m.AssertNumberOfCalls(t, "GetObject", 2)
}

func TestConfig_Profile(t *testing.T) {
	cfg := compare.Config{
		CategoryField:      "分类编码",
		ComboFields:        "实物系统, 关联系统",
		DepreciationTokens: "折旧",
		BooleanFields:      "是否共有",
	}
	p := cfg.Profile()
	assert.Equal(t, "分类编码", p.CategoryField)
	assert.Equal(t, []string{"实物系统", "关联系统"}, p.ComboFields)
	assert.Equal(t, []string{"折旧"}, p.DepreciationTokens)
	assert.Equal(t, []string{"是否共有"}, p.BooleanFields)
	assert.False(t, p.BooleanEverywhere)
	assert.Equal(t, "监管资产属性", p.RegulatoryField)

	assert.Equal(t, rules.Sheets{Rules: "r"}, compare.Config{RuleSheet: "r"}.Sheets())
}
