package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
)

// UserModule wires user management. /users/search is registered before /:id
// so it is not captured as an id.
type UserModule struct {
	Handler *handlers.UserHandler
	Shared  Shared
}

func NewUserModule(h *handlers.UserHandler, s Shared) *UserModule {
	return &UserModule{Handler: h, Shared: s}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := m.Shared.protected(rg, "/users", PermManageUsers)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Show)
		g.PUT("/:id", m.Handler.Update)
		g.PATCH("/:id", m.Handler.Update)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
