package compare_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"asset-reconciler/core/storage/mocks"
	"asset-reconciler/feature/compare"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(m *mocks.Client) *fiber.App {
	app := fiber.New()
	f := compare.NewFeature(m, bucket, zap.NewNop(), nil, testConfig())
	_ = f.Load(app)
	return app
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

func TestHandleCompare(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		app := newApp(newBucket(defaultObjects()))
		req := httptest.NewRequest("POST", "/compare",
			strings.NewReader(`{"platform":"inputs/platform.csv","reference":"inputs/erp.csv"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body compare.Response
		decode(t, resp, &body)
		assert.Equal(t, 1, body.Summary.DifferingCount)
		assert.Len(t, body.Missing, 1)
		assert.Len(t, body.Extra, 1)
		assert.NotEmpty(t, body.RunID)
	})

	t.Run("Workbook", func(t *testing.T) {
		app := newApp(newBucket(defaultObjects()))
		req := httptest.NewRequest("POST", "/compare?format=xlsx",
			strings.NewReader(`{"platform":"inputs/platform.csv","reference":"inputs/erp.csv"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	})

	t.Run("Bad Body", func(t *testing.T) {
		app := newApp(newBucket(defaultObjects()))
		req := httptest.NewRequest("POST", "/compare", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Missing Reference", func(t *testing.T) {
		app := newApp(newBucket(defaultObjects()))
		req := httptest.NewRequest("POST", "/compare", strings.NewReader(`{"platform":"inputs/platform.csv"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("Rule Book Without Key", func(t *testing.T) {
		objects := defaultObjects()
		objects["rules/rules.yaml"] = "rules:\n  - source: 原值\n"
		app := newApp(newBucket(objects))
		req := httptest.NewRequest("POST", "/compare",
			strings.NewReader(`{"platform":"inputs/platform.csv","reference":"inputs/erp.csv"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)

		var body map[string]string
		decode(t, resp, &body)
		assert.Contains(t, body["error"], "no primary key")
	})
}

func TestHandleUpload(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, file := range map[string][2]string{
		"platform":  {"平台.csv", platformCSV},
		"reference": {"erp.csv", referenceCSV},
		"rules":     {"rules.yaml", rulesYAML},
	} {
		part, err := w.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	// The uploaded rule book is used, so the bucket is never read.
	m := new(mocks.Client)
	app := newApp(m)
	req := httptest.NewRequest("POST", "/compare/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body compare.Response
	decode(t, resp, &body)
	assert.Equal(t, 2, body.Summary.CommonCount)
	m.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleUpload_MissingFile(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("platform", "平台.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte(platformCSV))
	require.NoError(t, w.Close())

	app := newApp(newBucket(defaultObjects()))
	req := httptest.NewRequest("POST", "/compare/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleGetRules(t *testing.T) {
	app := newApp(newBucket(defaultObjects()))

	resp, err := app.Test(httptest.NewRequest("GET", "/compare/rules", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body compare.RulesResponse
	decode(t, resp, &body)
	assert.Equal(t, "rules/rules.yaml", body.Source)
	require.Len(t, body.Rules, 3)
	assert.True(t, body.Rules[0].IsPrimaryKey)
	assert.Equal(t, "名称", body.Rules[1].TargetField)

	resp, err = app.Test(httptest.NewRequest("GET", "/compare/rules?object=rules/none.xlsx", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/compare/rules/cache", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestHandleListInputs(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, bucket, minio.ListObjectsOptions{Prefix: "inputs/", Recursive: true}).
		Return(func() <-chan minio.ObjectInfo {
			ch := make(chan minio.ObjectInfo, 3)
			ch <- minio.ObjectInfo{Key: "inputs/platform.xlsx"}
			ch <- minio.ObjectInfo{Key: "inputs/erp.csv"}
			ch <- minio.ObjectInfo{Key: "inputs/notes.txt"}
			close(ch)
			return ch
		})
	app := newApp(m)

	resp, err := app.Test(httptest.NewRequest("GET", "/compare/inputs", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string][]string
	decode(t, resp, &body)
	assert.Equal(t, []string{"inputs/erp.csv", "inputs/platform.xlsx"}, body["objects"])
}
