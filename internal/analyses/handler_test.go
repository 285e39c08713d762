package analyses

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillgap-backend/internal/shared/storage/object/local"
	"skillgap-backend/internal/shared/telemetry"
)

func setupRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "guest:me")
		c.Set("requestId", "req-h")
		c.Request = c.Request.WithContext(telemetry.WithRequestID(c.Request.Context(), "req-h"))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartUpload(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error.Code
}

func TestPostAnalysesSync(t *testing.T) {
	svc, hist := newTestService(t)
	router := setupRouter(t, svc)

	body, contentType := multipartUpload(t, "cv.txt", []byte(devopsResume), map[string]string{"query": "devops", "maxResults": "20"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var report Report
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, "a-1", report.AnalysisID)
	assert.True(t, report.Persisted)
	assert.NotEmpty(t, report.Plan.Text)

	stored, err := hist.GetAnalysis(req.Context(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "guest:me", stored.UserID)
}

func TestPostAnalysesAsync(t *testing.T) {
	svc, _ := newTestService(t)
	q := &stubQueue{}
	svc.Queue = q
	svc.Store = local.New(t.TempDir())
	router := setupRouter(t, svc)

	body, contentType := multipartUpload(t, "cv.txt", []byte(devopsResume), map[string]string{"query": "devops"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses?async=true", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())
	assert.Equal(t, "/api/v1/history/a-1", resp.Header().Get("Location"))
	assert.JSONEq(t, `{"analysisId":"a-1","status":"queued"}`, resp.Body.String())
	require.Len(t, q.sent, 1)
	assert.Equal(t, "req-h", q.sent[0].RequestID)
}

func TestPostAnalysesAsyncDisabled(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(t, svc)

	body, contentType := multipartUpload(t, "cv.txt", []byte(devopsResume), map[string]string{"query": "devops"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses?async=1", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "async_unavailable", errorCode(t, resp))
}

func TestPostAnalysesRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(t, svc)

	cases := []struct {
		name     string
		file     string
		data     []byte
		fields   map[string]string
		wantCode int
		wantErr  string
	}{
		{"bad extension", "cv.exe", []byte("x"), map[string]string{"query": "devops"}, http.StatusBadRequest, "validation_error"},
		{"empty file", "cv.pdf", nil, map[string]string{"query": "devops"}, http.StatusBadRequest, "validation_error"},
		{"missing query", "cv.txt", []byte("x"), nil, http.StatusBadRequest, "validation_error"},
		{"bad maxResults", "cv.txt", []byte("x"), map[string]string{"query": "devops", "maxResults": "lots"}, http.StatusBadRequest, "validation_error"},
		{"image without ocr", "scan.png", []byte{1, 2, 3}, map[string]string{"query": "devops"}, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tc.file, tc.data, tc.fields)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
			req.Header.Set("Content-Type", contentType)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tc.wantCode, resp.Code, resp.Body.String())
			assert.Equal(t, tc.wantErr, errorCode(t, resp))
		})
	}
}

func TestPostAnalysesMissingFile(t *testing.T) {
	svc, _ := newTestService(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(""))
	resp := httptest.NewRecorder()
	setupRouter(t, svc).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPostAnalysesText(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(t, svc)

	payload, _ := json.Marshal(map[string]any{"text": devopsResume, "query": "devops", "userName": "Jane"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/text", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `"summary":"Analyzed `)
}

func TestPostAnalysesTextValidation(t *testing.T) {
	svc, _ := newTestService(t)
	router := setupRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/text", strings.NewReader(`{"text":"Go and SQL"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "query is required")

	req = httptest.NewRequest(http.MethodPost, "/api/v1/analyses/text", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
