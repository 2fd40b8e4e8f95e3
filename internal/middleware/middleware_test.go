package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(logger zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(logger), AccessLog(logger), Metrics())
	r.GET("/ok/:id", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		out = append(out, line)
	}
	return out
}

func TestRequestID(t *testing.T) {
	r := newEngine(zerolog.Nop())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok/1", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/ok/42", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "access", lines[0]["type"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "/ok/:id", lines[0]["route"])
	assert.Equal(t, "/ok/42", lines[0]["path"])
	assert.EqualValues(t, http.StatusOK, lines[0]["status"])
	assert.NotContains(t, lines[0], "trace_id")
}

func TestAccessLog_Errors(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(zerolog.New(&buf))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Contains(t, lines[0]["errors"], "store down")
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(zerolog.New(&buf))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	lines := decodeLines(t, &buf)
	require.NotEmpty(t, lines)
	assert.Equal(t, "panic", lines[0]["type"])
	assert.Equal(t, "kaboom", lines[0]["error"])
}

func TestCORS(t *testing.T) {
	r := newEngine(zerolog.Nop())
	h := CORS([]string{"http://localhost:5173"})(r)

	req := httptest.NewRequest(http.MethodOptions, "/ok/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ok/1", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
