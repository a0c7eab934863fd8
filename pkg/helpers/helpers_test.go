package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	dev := NewLogger("rbac", "development", "")
	require.Equal(t, logrus.DebugLevel, dev.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, dev.Formatter)

	prod := NewLogger("rbac", "production", "warn")
	require.Equal(t, logrus.WarnLevel, prod.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)

	bad := NewLogger("rbac", "production", "loud")
	require.Equal(t, logrus.InfoLevel, bad.GetLevel())
}

func TestCookieManager(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	m := NewCookie("example.com", true)
	m.SetAccess(c, "tok", time.Now().Add(time.Hour))
	m.Clear(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	require.Equal(t, AccessTokenCookie, cookies[0].Name)
	require.Equal(t, "tok", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.True(t, cookies[0].Secure)
	require.Equal(t, "", cookies[1].Value)
	require.Equal(t, 0, maxAgeFrom(time.Now().Add(-time.Minute)))
}
