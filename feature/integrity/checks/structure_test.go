package checks

import (
	"context"
	"testing"

	"asset-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestRequiredFolders(t *testing.T) {
	tests := []struct {
		name    string
		rules   string
		inputs  string
		reports string
		want    []string
	}{
		{"Defaults", "rules/比对规则.xlsx", "inputs/", "reports/", []string{"rules", "inputs", "reports"}},
		{"Rule Book At Root", "rules.yaml", "inputs/", "reports/", []string{"inputs", "reports"}},
		{"Shared Prefix", "data/rules.yaml", "data/", "/data/", []string{"data"}},
		{"Nested", "cfg/rules/book.xlsx", "in/2024/", "", []string{"cfg/rules", "in/2024"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredFolders(tt.rules, tt.inputs, tt.reports))
		})
	}
}

func TestCheckStructure(t *testing.T) {
	folders := []string{"rules", "inputs", "reports"}

	t.Run("Bucket Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "reconcile").Return(false, nil)

		_, err := CheckStructure(context.Background(), mockClient, "reconcile", folders)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("All Missing", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "reconcile").Return(true, nil)
		mockClient.On("ListObjects", mock.Anything, "reconcile", mock.Anything).Return(emptyListing)

		missing, err := CheckStructure(context.Background(), mockClient, "reconcile", folders)
		assert.NoError(t, err)
		assert.Equal(t, folders, missing)
	})

	t.Run("Some Present", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "reconcile").Return(true, nil)

		for _, folder := range []string{"rules", "reports"} {
			folder := folder
			mockClient.On("ListObjects", mock.Anything, "reconcile", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
				return opts.Prefix == folder+"/"
			})).Return(func() <-chan minio.ObjectInfo {
				ch := make(chan minio.ObjectInfo, 1)
				ch <- minio.ObjectInfo{Key: folder + "/"}
				close(ch)
				return ch
			})
		}
		mockClient.On("ListObjects", mock.Anything, "reconcile", mock.Anything).Return(emptyListing)

		missing, err := CheckStructure(context.Background(), mockClient, "reconcile", folders)
		assert.NoError(t, err)
		assert.Equal(t, []string{"inputs"}, missing)
	})
}

func TestFixStructure(t *testing.T) {
	logger := zap.NewNop()
	mockClient := new(mocks.Client)

	mockClient.On("PutObject", mock.Anything, "reconcile", "inputs/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)
	mockClient.On("PutObject", mock.Anything, "reconcile", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, assert.AnError)

	err := FixStructure(context.Background(), mockClient, "reconcile", logger, []string{"inputs"})
	assert.NoError(t, err)

	err = FixStructure(context.Background(), mockClient, "reconcile", logger, []string{"reports/"})
	assert.ErrorIs(t, err, assert.AnError)
	mockClient.AssertNumberOfCalls(t, "PutObject", 2)
}
