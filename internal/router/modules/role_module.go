package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
)

type RoleModule struct {
	Handler *handlers.RoleHandler
	Shared  Shared
}

func NewRoleModule(h *handlers.RoleHandler, s Shared) *RoleModule {
	return &RoleModule{Handler: h, Shared: s}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	g := m.Shared.protected(rg, "/roles", PermManagePermissions)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/:id", m.Handler.Show)
		g.PUT("/:id", m.Handler.Update)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
