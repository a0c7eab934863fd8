package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/token"
	handlers "github.com/oksasatya/go-ddd-rbac/internal/interface/http"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// Auth resolves the bearer token (header or access cookie) to a user and
// stores it in the Gin context. Requests without a usable token are rejected.
func Auth(auth *application.AuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := auth.User(c.Request.Context(), token.FromRequest(c.Request))
		if err == nil && u == nil {
			err = apperr.NoActiveSession()
		}
		if err != nil {
			handlers.WriteError(c, logger, err)
			c.Abort()
			return
		}
		id, _ := u.ID()
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, id.Value())
		c.Next()
	}
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
