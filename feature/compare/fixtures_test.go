package compare_test

import (
	"bytes"
	"errors"
	"io"

	"asset-reconciler/core/storage/mocks"
	"asset-reconciler/feature/compare"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
)

const bucket = "reconcile"

const rulesYAML = `rules:
  - source: 资产编号
    primary_key: true
  - source: 资产名称
    target: 名称
  - source: 原值
    type: 数值
    tolerance: "0.01"
`

const platformCSV = "资产编号,资产名称,原值\nA1,变压器,100\nA2,断路器,200\nA3,电缆,300\n"

const referenceCSV = "资产编号,名称,原值\nA1,变压器,100.001\nA2,断路器,250\nA9,杆塔,90\n"

func testConfig() compare.Config {
	return compare.Config{
		RulesObject:         "rules/rules.yaml",
		InputPrefix:         "inputs/",
		ReportPrefix:        "reports/",
		HeaderRows:          1,
		CategoryPrefixWidth: 4,
		CacheTTLSeconds:     300,
	}
}

// newBucket serves the given objects; any other object is reported missing.
func newBucket(objects map[string]string) *mocks.Client {
	m := new(mocks.Client)
	for name, body := range objects {
		body := body
		m.On("GetObject", mock.Anything, bucket, name, mock.Anything).
			Return(func() io.ReadCloser { return io.NopCloser(bytes.NewReader([]byte(body))) }, nil)
	}
	m.On("GetObject", mock.Anything, bucket, mock.Anything, mock.Anything).
		Return(nil, errors.New("object does not exist"))
	m.On("PutObject", mock.Anything, bucket, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	return m
}

func defaultObjects() map[string]string {
	return map[string]string{
		"rules/rules.yaml":    rulesYAML,
		"inputs/platform.csv": platformCSV,
		"inputs/erp.csv":      referenceCSV,
	}
}
