package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowList(t *testing.T) {
	r := newRouter(CORS([]string{"https://exam.example.com/"}))

	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://exam.example.com"})
	assert.Equal(t, "https://exam.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://exam.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSWildcard(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))
	w := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://any.example.com"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Hour, "/metrics")
	r := newRouter(l.Middleware())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/ping", nil).Code)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/metrics", nil).Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	l := NewRateLimiter(10, time.Second)
	now := time.Now()
	assert.True(t, l.allow("10.0.0.1", now))
	assert.Len(t, l.visitors, 1)

	l.sweep(now.Add(30 * time.Second))
	assert.Len(t, l.visitors, 1)

	l.sweep(now.Add(2 * time.Minute))
	assert.Empty(t, l.visitors)
}

func TestSecureHeaders(t *testing.T) {
	w := do(newRouter(Secure()), http.MethodGet, "/ping", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
