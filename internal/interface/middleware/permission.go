package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
	"github.com/oksasatya/go-ddd-rbac/pkg/response"
)

// RequirePermission lets the request through only when the authenticated user
// holds permission through one of its roles. Must run after Auth.
func RequirePermission(authz *application.Authorizer, permission string, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			handlers.WriteError(c, logger, apperr.NoActiveSession())
			c.Abort()
			return
		}
		ok, err := authz.Can(c.Request.Context(), u, permission)
		if err != nil {
			handlers.WriteError(c, logger, err)
			c.Abort()
			return
		}
		if !ok {
			response.Error[any](c, http.StatusForbidden, "forbidden", gin.H{"required": permission})
			c.Abort()
			return
		}
		c.Next()
	}
}
