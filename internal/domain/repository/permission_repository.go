package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// PermissionFilter narrows listings. Zero value matches everything.
type PermissionFilter struct {
	// Name matches permissions whose name contains it, case-insensitively.
	Name string
}

type PermissionRepository interface {
	FindByID(ctx context.Context, id vo.ID) (*entity.Permission, error)
	FindByName(ctx context.Context, name vo.PermissionName, guard vo.GuardName) (*entity.Permission, error)
	// ExistingNames returns the subset of names that exist under guard.
	ExistingNames(ctx context.Context, names []string, guard vo.GuardName) ([]string, error)
	Paginate(ctx context.Context, page, perPage int, filter PermissionFilter) ([]*entity.Permission, error)
	Count(ctx context.Context, filter PermissionFilter) (int, error)
	Save(ctx context.Context, p *entity.Permission) (*entity.Permission, error)
	Delete(ctx context.Context, id vo.ID) error
}
