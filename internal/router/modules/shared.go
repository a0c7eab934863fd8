// Package modules groups HTTP routes by resource. Each module registers its
// routes on the versioned API group.
package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	"github.com/oksasatya/go-ddd-rbac/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-rbac/internal/metrics"
)

// Permissions guarding the management routes.
const (
	PermManagePermissions = "manager-permissions"
	PermManageUsers       = "manager-users"
)

// Shared carries what every module needs to build its middleware chain.
type Shared struct {
	Auth    *application.AuthService
	Authz   *application.Authorizer
	Counter middleware.Counter
	Metrics *metrics.Recorder
	Logger  *logrus.Logger
}

func (s Shared) limit(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(s.Counter, max, time.Minute, key, nil, s.Metrics)
}

// protected returns a group requiring a bearer token and, when perm is set, that permission.
func (s Shared) protected(rg *gin.RouterGroup, path, perm string) *gin.RouterGroup {
	g := rg.Group(path)
	g.Use(middleware.Auth(s.Auth, s.Logger))
	g.Use(s.limit(120, middleware.KeyByUserID()))
	if perm != "" {
		g.Use(middleware.RequirePermission(s.Authz, perm, s.Logger))
	}
	return g
}
