package memory

import (
	"context"
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type PermissionRepository struct {
	s *Store
}

func (r *PermissionRepository) FindByID(_ context.Context, id vo.ID) (*entity.Permission, error) {
	key, ok := rowID(id)
	if !ok {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.permissions[key]
	if !ok {
		return nil, nil
	}
	return row.toEntity()
}

func (r *PermissionRepository) FindByName(_ context.Context, name vo.PermissionName, guard vo.GuardName) (*entity.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.permissions {
		if row.name == name.Value() && row.guard == guard.Value() {
			return row.toEntity()
		}
	}
	return nil, nil
}

func (r *PermissionRepository) ExistingNames(_ context.Context, names []string, guard vo.GuardName) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []string{}
	for _, n := range names {
		if r.s.permissionExists(n, guard.Value()) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *PermissionRepository) Paginate(_ context.Context, page, perPage int, filter repo.PermissionFilter) ([]*entity.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := r.filtered(filter)
	from, to := window(len(keys), page, perPage)
	out := make([]*entity.Permission, 0, to-from)
	for _, k := range keys[from:to] {
		p, err := r.s.permissions[k].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PermissionRepository) Count(_ context.Context, filter repo.PermissionFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.filtered(filter)), nil
}

func (r *PermissionRepository) filtered(filter repo.PermissionFilter) []int64 {
	needle := strings.ToLower(strings.TrimSpace(filter.Name))
	keys := sortedKeys(r.s.permissions)
	if needle == "" {
		return keys
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.Contains(strings.ToLower(r.s.permissions[k].name), needle) {
			out = append(out, k)
		}
	}
	return out
}

func (r *PermissionRepository) Save(_ context.Context, p *entity.Permission) (*entity.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var key int64
	id, persisted := p.ID()
	if persisted {
		var ok bool
		if key, ok = rowID(id); !ok || r.s.permissions[key] == nil {
			return nil, apperr.NotFound("Permission with ID %s not found.", id)
		}
	}
	name, guard := p.Name().Value(), p.Guard().Value()
	for k, row := range r.s.permissions {
		if k != key && row.name == name && row.guard == guard {
			return nil, apperr.AlreadyExists("A permission with name '%s' and guard '%s' already exists.", name, guard)
		}
	}

	now := r.s.now()
	row := &permissionRow{name: name, guard: guard, createdAt: now, updatedAt: now}
	if persisted {
		old := r.s.permissions[key]
		row.id = key
		row.createdAt = old.createdAt
		if old.guard != guard {
			r.s.detachPermission(old.name, old.guard)
		}
	} else {
		row.id = r.s.nextID()
	}
	r.s.permissions[row.id] = row
	return row.toEntity()
}

// Delete removes the permission and detaches it from every role of its guard.
func (r *PermissionRepository) Delete(_ context.Context, id vo.ID) error {
	key, ok := rowID(id)
	if !ok {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.permissions[key]
	if !ok {
		return nil
	}
	delete(r.s.permissions, key)
	r.s.detachPermission(row.name, row.guard)
	return nil
}

func (s *Store) detachPermission(name, guard string) {
	for _, role := range s.roles {
		if role.guard == guard {
			role.permissions = without(role.permissions, name)
		}
	}
}

func (row *permissionRow) toEntity() (*entity.Permission, error) {
	id, err := vo.IDFromInt(row.id)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewPermissionName(row.name)
	if err != nil {
		return nil, err
	}
	guard, err := vo.NewGuardName(row.guard)
	if err != nil {
		return nil, err
	}
	p := entity.ReconstitutePermission(id, name, guard)
	p.CreatedAt, p.UpdatedAt = row.createdAt, row.updatedAt
	return p, nil
}
