package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg, reg)
	r := gin.New()
	r.GET("/login", RateLimit(NewMemoryCounter(), 2, time.Minute, KeyByIPAndPath(), nil, rec), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/login", nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	hits, err := testutil.GatherAndCount(reg, "rbac_http_rate_limit_hits_total")
	require.NoError(t, err)
	require.Equal(t, 1, hits)
}

func TestRateLimitBypassAndOptions(t *testing.T) {
	r := gin.New()
	limiter := RateLimit(NewMemoryCounter(), 1, time.Minute, KeyByIPAndPath(), AllowPrivateIP(), nil)
	r.Any("/x", limiter, func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		require.Equal(t, http.StatusOK, serve(r, req).Code)
	}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodOptions, "/x", nil)).Code)
	}
}

func TestMemoryCounterWindows(t *testing.T) {
	c := NewMemoryCounter()
	n, ttl, err := c.Incr(context.Background(), "k", 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 50*time.Millisecond, ttl)

	n, _, err = c.Incr(context.Background(), "k", 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	time.Sleep(80 * time.Millisecond)
	n, _, err = c.Incr(context.Background(), "k", 50*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	id := "5f1c1d0e-8a0b-4a57-9b8e-0c8d2f0e4a11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w := serve(r, req)
	require.Equal(t, id, w.Body.String())
	require.Equal(t, id, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = serve(r, req)
	require.NotEqual(t, "not a uuid", w.Body.String())
	require.Len(t, w.Body.String(), 36)
}

func TestRealIPPrefersCloudflareThenForwardedFor(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	require.Equal(t, "203.0.113.9", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	require.Equal(t, "198.51.100.1", serve(r, req).Body.String())
}

func TestOnlyPrivateIP(t *testing.T) {
	r := gin.New()
	r.GET("/metrics", OnlyPrivateIP(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	require.Equal(t, http.StatusNotFound, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	require.Equal(t, http.StatusOK, serve(r, req).Code)
}
