package entity

import (
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// Permission is a named capability scoped by a guard.
type Permission struct {
	id        *vo.ID
	name      vo.PermissionName
	guard     vo.GuardName
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPermission(name vo.PermissionName, guard vo.GuardName) *Permission {
	return &Permission{name: name, guard: guard}
}

func ReconstitutePermission(id vo.ID, name vo.PermissionName, guard vo.GuardName) *Permission {
	return &Permission{id: &id, name: name, guard: guard}
}

func (p *Permission) ID() (vo.ID, bool) {
	if p.id == nil {
		return vo.ID{}, false
	}
	return *p.id, true
}

func (p *Permission) AssignID(id vo.ID) error {
	if p.id != nil && !p.id.Equals(id) {
		return apperr.InvalidValue("Permission ID is immutable once set.")
	}
	p.id = &id
	return nil
}

func (p *Permission) Name() vo.PermissionName { return p.name }
func (p *Permission) Guard() vo.GuardName     { return p.guard }

func (p *Permission) ChangeGuard(guard vo.GuardName) { p.guard = guard }
