package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Role groups permissions under a guard. (name, guard) is unique across roles;
// the repository and the use cases enforce it, not the entity.
// The name does not change after creation.
type Role struct {
	id          *vo.ID
	name        vo.RoleName
	guard       vo.GuardName
	permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewRole(name vo.RoleName, guard vo.GuardName, permissions []string) *Role {
	r := &Role{name: name, guard: guard}
	r.SyncPermissions(permissions)
	return r
}

func ReconstituteRole(id vo.ID, name vo.RoleName, guard vo.GuardName, permissions []string) *Role {
	r := NewRole(name, guard, permissions)
	r.id = &id
	return r
}

func (r *Role) ID() (vo.ID, bool) {
	if r.id == nil {
		return vo.ID{}, false
	}
	return *r.id, true
}

func (r *Role) AssignID(id vo.ID) error {
	if r.id != nil && !r.id.Equals(id) {
		return apperr.InvalidValue("Role ID is immutable once set.")
	}
	r.id = &id
	return nil
}

func (r *Role) Name() vo.RoleName   { return r.name }
func (r *Role) Guard() vo.GuardName { return r.guard }

// Permissions returns a copy of the permission names.
func (r *Role) Permissions() []string {
	out := make([]string, len(r.permissions))
	copy(out, r.permissions)
	return out
}

func (r *Role) HasPermission(name string) bool {
	for _, p := range r.permissions {
		if p == name {
			return true
		}
	}
	return false
}

func (r *Role) ChangeGuard(guard vo.GuardName) { r.guard = guard }

// SyncPermissions replaces the whole permission list, dropping blanks and duplicates.
func (r *Role) SyncPermissions(names []string) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	r.permissions = out
}
