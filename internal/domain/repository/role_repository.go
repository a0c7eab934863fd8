package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type RoleRepository interface {
	FindByID(ctx context.Context, id vo.ID) (*entity.Role, error)
	FindByName(ctx context.Context, name vo.RoleName, guard vo.GuardName) (*entity.Role, error)
	// FindByNames returns the roles of guard whose name is in names, in no particular order.
	FindByNames(ctx context.Context, names []string, guard vo.GuardName) ([]*entity.Role, error)
	Paginate(ctx context.Context, page, perPage int) ([]*entity.Role, error)
	Count(ctx context.Context) (int, error)
	// Save persists the role and its permission list. A (name, guard) clash is
	// reported as apperr.AlreadyExists.
	Save(ctx context.Context, r *entity.Role) (*entity.Role, error)
	Delete(ctx context.Context, id vo.ID) error
}
