package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

const defaultPermissionsPerPage = 10

type PermissionService struct {
	Permissions repo.PermissionRepository
	Hooks
}

func NewPermissionService(permissions repo.PermissionRepository, hooks Hooks) *PermissionService {
	return &PermissionService{Permissions: permissions, Hooks: hooks}
}

type CreatePermissionInput struct {
	Name  string
	Guard string
}

type UpdatePermissionInput struct {
	ID    string
	Name  *string
	Guard *string
}

type ListPermissionsInput struct {
	ListInput
	Name string
}

func (s *PermissionService) Create(ctx context.Context, in CreatePermissionInput) (_ *entity.Permission, err error) {
	defer s.observe("permission.create", time.Now(), &err)

	name, err := vo.NewPermissionName(in.Name)
	if err != nil {
		return nil, err
	}
	guard := vo.GuardOrDefault(in.Guard)

	existing, err := s.Permissions.FindByName(ctx, name, guard)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("A permission with name '%s' and guard '%s' already exists.", name, guard)
	}

	saved, err := s.Permissions.Save(ctx, entity.NewPermission(name, guard))
	if err != nil {
		return nil, err
	}
	id, _ := saved.ID()
	s.publish(ctx, "permission.created", id.Value(), map[string]any{"name": name.Value(), "guard": guard.Value()})
	return saved, nil
}

func (s *PermissionService) Update(ctx context.Context, in UpdatePermissionInput) (_ *entity.Permission, err error) {
	defer s.observe("permission.update", time.Now(), &err)

	p, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name, err := vo.NewPermissionName(*in.Name)
		if err != nil {
			return nil, err
		}
		if !name.Equals(p.Name()) {
			return nil, apperr.InvalidValue("Permission name cannot be changed after creation.")
		}
	}
	if in.Guard != nil {
		guard, err := vo.NewGuardName(*in.Guard)
		if err != nil {
			return nil, err
		}
		if !guard.Equals(p.Guard()) {
			clash, err := s.Permissions.FindByName(ctx, p.Name(), guard)
			if err != nil {
				return nil, err
			}
			if clash != nil {
				return nil, apperr.AlreadyExists("A permission with name '%s' and guard '%s' already exists.", p.Name(), guard)
			}
			p.ChangeGuard(guard)
		}
	}

	saved, err := s.Permissions.Save(ctx, p)
	if err != nil {
		return nil, err
	}
	id, _ := saved.ID()
	s.publish(ctx, "permission.updated", id.Value(), map[string]any{"guard": saved.Guard().Value()})
	return saved, nil
}

func (s *PermissionService) Delete(ctx context.Context, rawID string) (err error) {
	defer s.observe("permission.delete", time.Now(), &err)

	p, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	id, _ := p.ID()
	if err := s.Permissions.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "permission.deleted", id.Value(), map[string]any{"name": p.Name().Value()})
	return nil
}

func (s *PermissionService) Show(ctx context.Context, rawID string) (*entity.Permission, error) {
	return s.load(ctx, rawID)
}

func (s *PermissionService) List(ctx context.Context, in ListPermissionsInput) (_ *Page[*entity.Permission], err error) {
	defer s.observe("permission.list", time.Now(), &err)

	page, perPage := in.normalize(defaultPermissionsPerPage)
	filter := repo.PermissionFilter{Name: in.Name}
	return loadPage(ctx, page, perPage,
		func(ctx context.Context) ([]*entity.Permission, error) {
			return s.Permissions.Paginate(ctx, page, perPage, filter)
		},
		func(ctx context.Context) (int, error) { return s.Permissions.Count(ctx, filter) },
	)
}

func (s *PermissionService) load(ctx context.Context, rawID string) (*entity.Permission, error) {
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.Permissions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Permission with ID %s not found.", id)
	}
	return p, nil
}
