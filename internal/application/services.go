package application

import (
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Services groups the use cases built over one set of repositories.
type Services struct {
	Auth        *AuthService
	Roles       *RoleService
	Permissions *PermissionService
	Users       *UserService
	Authz       *Authorizer
}

// NewServices wires every use case. index may be nil.
func NewServices(users repo.UserRepository, roles repo.RoleRepository, permissions repo.PermissionRepository,
	tokens repo.TokenManager, index UserIndexer, guard vo.GuardName, hooks Hooks) Services {
	return Services{
		Auth:        NewAuthService(users, tokens, hooks),
		Roles:       NewRoleService(roles, permissions, hooks),
		Permissions: NewPermissionService(permissions, hooks),
		Users:       NewUserService(users, roles, index, guard, hooks),
		Authz:       NewAuthorizer(roles, guard),
	}
}
