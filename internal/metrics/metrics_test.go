package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, reg)

	r.ObserveUseCase("role.create", "ok", 10*time.Millisecond)
	r.ObserveUseCase("role.create", apperr.KindAlreadyExists, time.Millisecond)
	r.ObserveRequest(http.MethodGet, "/api/v1/roles", http.StatusOK, time.Millisecond)
	r.RateLimitHit("/api/v1/auth/login")

	require.Equal(t, 1.0, testutil.ToFloat64(r.useCaseTotal.WithLabelValues("role.create", "already_exists")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.requestTotal.WithLabelValues("GET", "/api/v1/roles", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.rateLimitHits.WithLabelValues("/api/v1/auth/login")))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "rbac_app_use_case_total")
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(reg, reg)
	second := New(reg, reg)
	require.Same(t, first.useCaseTotal, second.useCaseTotal)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveUseCase("x", "ok", time.Second)
	r.ObserveRequest("GET", "/", 200, time.Second)
	r.RateLimitHit("/")
	require.NotNil(t, r.Handler())
}
