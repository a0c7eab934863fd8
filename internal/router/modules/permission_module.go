package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
)

type PermissionModule struct {
	Handler *handlers.PermissionHandler
	Shared  Shared
}

func NewPermissionModule(h *handlers.PermissionHandler, s Shared) *PermissionModule {
	return &PermissionModule{Handler: h, Shared: s}
}

func (m *PermissionModule) Register(rg *gin.RouterGroup) {
	g := m.Shared.protected(rg, "/permissions", PermManagePermissions)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/:id", m.Handler.Show)
		g.PUT("/:id", m.Handler.Update)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
