package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
	"github.com/oksasatya/go-ddd-rbac/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Shared  Shared
}

func NewAuthModule(h *handlers.AuthHandler, s Shared) *AuthModule {
	return &AuthModule{Handler: h, Shared: s}
}

// Register mounts:
//
//	POST /auth/login, POST /auth/refresh   public, IP rate limited
//	POST /auth/logout, GET /auth/me        bearer token
func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", m.Shared.limit(10, middleware.KeyByIPAndPath()), m.Handler.Login)
	rg.POST("/auth/refresh", m.Shared.limit(60, middleware.KeyByIPAndPath()), m.Handler.Refresh)

	auth := m.Shared.protected(rg, "/auth", "")
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
