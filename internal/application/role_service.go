package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

const defaultRolesPerPage = 15

type RoleService struct {
	Roles       repo.RoleRepository
	Permissions repo.PermissionRepository
	Hooks
}

func NewRoleService(roles repo.RoleRepository, permissions repo.PermissionRepository, hooks Hooks) *RoleService {
	return &RoleService{Roles: roles, Permissions: permissions, Hooks: hooks}
}

type CreateRoleInput struct {
	Name        string
	Guard       string
	Permissions []string
}

// UpdateRoleInput carries optional fields. Nil means "leave untouched";
// a non-nil empty Permissions clears the role.
type UpdateRoleInput struct {
	ID          string
	Name        *string
	Guard       *string
	Permissions *[]string
}

func (s *RoleService) Create(ctx context.Context, in CreateRoleInput) (_ *entity.Role, err error) {
	defer s.observe("role.create", time.Now(), &err)

	name, err := vo.NewRoleName(in.Name)
	if err != nil {
		return nil, err
	}
	guard := vo.GuardOrDefault(in.Guard)

	existing, err := s.Roles.FindByName(ctx, name, guard)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("A role with name '%s' and guard '%s' already exists.", name, guard)
	}

	perms, err := s.validatePermissions(ctx, in.Permissions, guard)
	if err != nil {
		return nil, err
	}

	saved, err := s.Roles.Save(ctx, entity.NewRole(name, guard, perms))
	if err != nil {
		return nil, err
	}
	id, _ := saved.ID()
	s.publish(ctx, "role.created", id.Value(), map[string]any{
		"name":        name.Value(),
		"guard":       guard.Value(),
		"permissions": saved.Permissions(),
	})
	return saved, nil
}

func (s *RoleService) Update(ctx context.Context, in UpdateRoleInput) (_ *entity.Role, err error) {
	defer s.observe("role.update", time.Now(), &err)

	role, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := vo.NewRoleName(*in.Name)
		if err != nil {
			return nil, err
		}
		if !name.Equals(role.Name()) {
			return nil, apperr.InvalidValue("Role name cannot be changed after creation.")
		}
	}

	guardChanged := false
	if in.Guard != nil {
		guard, err := vo.NewGuardName(*in.Guard)
		if err != nil {
			return nil, err
		}
		if !guard.Equals(role.Guard()) {
			clash, err := s.Roles.FindByName(ctx, role.Name(), guard)
			if err != nil {
				return nil, err
			}
			if clash != nil {
				return nil, apperr.AlreadyExists("A role with name '%s' and guard '%s' already exists.", role.Name(), guard)
			}
			role.ChangeGuard(guard)
			guardChanged = true
		}
	}

	// A guard move re-validates the kept permissions against the new guard.
	if in.Permissions != nil || guardChanged {
		names := role.Permissions()
		if in.Permissions != nil {
			names = *in.Permissions
		}
		perms, err := s.validatePermissions(ctx, names, role.Guard())
		if err != nil {
			return nil, err
		}
		role.SyncPermissions(perms)
	}

	saved, err := s.Roles.Save(ctx, role)
	if err != nil {
		return nil, err
	}
	id, _ := saved.ID()
	s.publish(ctx, "role.updated", id.Value(), map[string]any{
		"guard":       saved.Guard().Value(),
		"permissions": saved.Permissions(),
	})
	return saved, nil
}

func (s *RoleService) Delete(ctx context.Context, rawID string) (err error) {
	defer s.observe("role.delete", time.Now(), &err)

	role, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	id, _ := role.ID()
	if err := s.Roles.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "role.deleted", id.Value(), map[string]any{"name": role.Name().Value()})
	return nil
}

func (s *RoleService) Show(ctx context.Context, rawID string) (*entity.Role, error) {
	return s.load(ctx, rawID)
}

func (s *RoleService) List(ctx context.Context, in ListInput) (_ *Page[*entity.Role], err error) {
	defer s.observe("role.list", time.Now(), &err)

	page, perPage := in.normalize(defaultRolesPerPage)
	return loadPage(ctx, page, perPage,
		func(ctx context.Context) ([]*entity.Role, error) { return s.Roles.Paginate(ctx, page, perPage) },
		s.Roles.Count,
	)
}

func (s *RoleService) load(ctx context.Context, rawID string) (*entity.Role, error) {
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	role, err := s.Roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("Role with ID %s not found.", id)
	}
	return role, nil
}

// validatePermissions splits names into existing and missing permissions of
// guard. Any missing name fails the whole call.
func (s *RoleService) validatePermissions(ctx context.Context, names []string, guard vo.GuardName) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	requested := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		n, err := vo.NewPermissionName(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[n.Value()]; dup {
			continue
		}
		seen[n.Value()] = struct{}{}
		requested = append(requested, n.Value())
	}

	existing, err := s.Permissions.ExistingNames(ctx, requested, guard)
	if err != nil {
		return nil, err
	}
	found := make(map[string]struct{}, len(existing))
	for _, n := range existing {
		found[n] = struct{}{}
	}

	var valid, invalid []string
	for _, n := range requested {
		if _, ok := found[n]; ok {
			valid = append(valid, n)
		} else {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return nil, apperr.InvalidPermissionReference(invalid)
	}
	return valid, nil
}
