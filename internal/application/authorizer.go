package application

import (
	"context"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Authorizer answers whether a user holds a permission through any of its roles.
type Authorizer struct {
	Roles repo.RoleRepository
	Guard vo.GuardName
}

func NewAuthorizer(roles repo.RoleRepository, guard vo.GuardName) *Authorizer {
	if guard.Value() == "" {
		guard = vo.GuardOrDefault("")
	}
	return &Authorizer{Roles: roles, Guard: guard}
}

func (a *Authorizer) Can(ctx context.Context, u *entity.User, permission string) (bool, error) {
	if u == nil || u.Roles().Len() == 0 {
		return false, nil
	}
	roles, err := a.Roles.FindByNames(ctx, u.Roles().Names(), a.Guard)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.HasPermission(permission) {
			return true, nil
		}
	}
	return false, nil
}

// Permissions lists the effective permission names of u, deduplicated.
func (a *Authorizer) Permissions(ctx context.Context, u *entity.User) ([]string, error) {
	if u == nil || u.Roles().Len() == 0 {
		return []string{}, nil
	}
	roles, err := a.Roles.FindByNames(ctx, u.Roles().Names(), a.Guard)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range roles {
		for _, p := range r.Permissions() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out, nil
}
