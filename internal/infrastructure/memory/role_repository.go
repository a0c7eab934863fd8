package memory

import (
	"context"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type RoleRepository struct {
	s *Store
}

func (r *RoleRepository) FindByID(_ context.Context, id vo.ID) (*entity.Role, error) {
	key, ok := rowID(id)
	if !ok {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.roles[key]
	if !ok {
		return nil, nil
	}
	return row.toEntity()
}

func (r *RoleRepository) FindByName(_ context.Context, name vo.RoleName, guard vo.GuardName) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.roles {
		if row.name == name.Value() && row.guard == guard.Value() {
			return row.toEntity()
		}
	}
	return nil, nil
}

func (r *RoleRepository) FindByNames(_ context.Context, names []string, guard vo.GuardName) ([]*entity.Role, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*entity.Role{}
	for _, k := range sortedKeys(r.s.roles) {
		row := r.s.roles[k]
		if _, ok := want[row.name]; !ok || row.guard != guard.Value() {
			continue
		}
		role, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, nil
}

func (r *RoleRepository) Paginate(_ context.Context, page, perPage int) ([]*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := sortedKeys(r.s.roles)
	from, to := window(len(keys), page, perPage)
	out := make([]*entity.Role, 0, to-from)
	for _, k := range keys[from:to] {
		role, err := r.s.roles[k].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, nil
}

func (r *RoleRepository) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.roles), nil
}

// Save stores the role. Permission names that do not exist under the role's
// guard are dropped, matching the join-table behavior of the SQL store.
func (r *RoleRepository) Save(_ context.Context, role *entity.Role) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var key int64
	id, persisted := role.ID()
	if persisted {
		var ok bool
		if key, ok = rowID(id); !ok || r.s.roles[key] == nil {
			return nil, apperr.NotFound("Role with ID %s not found.", id)
		}
	}
	name, guard := role.Name().Value(), role.Guard().Value()
	for k, row := range r.s.roles {
		if k != key && row.name == name && row.guard == guard {
			return nil, apperr.AlreadyExists("A role with name '%s' and guard '%s' already exists.", name, guard)
		}
	}

	perms := make([]string, 0, len(role.Permissions()))
	for _, p := range role.Permissions() {
		if r.s.permissionExists(p, guard) {
			perms = append(perms, p)
		}
	}

	if persisted {
		if prev := r.s.roles[key]; prev.guard == r.s.userGuard && guard != r.s.userGuard {
			r.s.detachRoleFromUsers(prev.name)
		}
	}

	now := r.s.now()
	row := &roleRow{name: name, guard: guard, permissions: perms, createdAt: now, updatedAt: now}
	if persisted {
		row.id = key
		row.createdAt = r.s.roles[key].createdAt
	} else {
		row.id = r.s.nextID()
	}
	r.s.roles[row.id] = row
	return row.toEntity()
}

// Delete removes the role. A role in the users' guard is detached from every user.
func (r *RoleRepository) Delete(_ context.Context, id vo.ID) error {
	key, ok := rowID(id)
	if !ok {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.roles[key]
	if !ok {
		return nil
	}
	delete(r.s.roles, key)
	if row.guard == r.s.userGuard {
		r.s.detachRoleFromUsers(row.name)
	}
	return nil
}

func (s *Store) detachRoleFromUsers(name string) {
	for _, u := range s.users {
		u.roles = without(u.roles, name)
	}
}

func (s *Store) permissionExists(name, guard string) bool {
	for _, p := range s.permissions {
		if p.name == name && p.guard == guard {
			return true
		}
	}
	return false
}

func (row *roleRow) toEntity() (*entity.Role, error) {
	id, err := vo.IDFromInt(row.id)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewRoleName(row.name)
	if err != nil {
		return nil, err
	}
	guard, err := vo.NewGuardName(row.guard)
	if err != nil {
		return nil, err
	}
	role := entity.ReconstituteRole(id, name, guard, cloneStrings(row.permissions))
	role.CreatedAt, role.UpdatedAt = row.createdAt, row.updatedAt
	return role, nil
}
