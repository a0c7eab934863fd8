package entity

import (
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// User is the aggregate root for accounts. All state changes go through
// behavior methods taking already-validated value objects.
type User struct {
	id        *vo.ID
	name      vo.UserName
	email     vo.Email
	password  vo.Password
	roles     vo.RoleSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser builds a user that has not been persisted yet.
func NewUser(name vo.UserName, email vo.Email, password vo.Password, roles vo.RoleSet) *User {
	return &User{name: name, email: email, password: password, roles: roles}
}

// ReconstituteUser rebuilds a stored user.
func ReconstituteUser(id vo.ID, name vo.UserName, email vo.Email, password vo.Password, roles vo.RoleSet) *User {
	return &User{id: &id, name: name, email: email, password: password, roles: roles}
}

func (u *User) ID() (vo.ID, bool) {
	if u.id == nil {
		return vo.ID{}, false
	}
	return *u.id, true
}

// AssignID sets the identity once; it is immutable afterwards.
func (u *User) AssignID(id vo.ID) error {
	if u.id != nil && !u.id.Equals(id) {
		return apperr.InvalidValue("User ID is immutable once set.")
	}
	u.id = &id
	return nil
}

func (u *User) Name() vo.UserName     { return u.name }
func (u *User) Email() vo.Email       { return u.email }
func (u *User) Password() vo.Password { return u.password }
func (u *User) Roles() vo.RoleSet     { return u.roles }

func (u *User) Rename(name vo.UserName)      { u.name = name }
func (u *User) ChangeEmail(email vo.Email)   { u.email = email }
func (u *User) ChangePassword(p vo.Password) { u.password = p }
func (u *User) AssignRoles(roles vo.RoleSet) { u.roles = roles }
func (u *User) HasRole(role string) bool     { return u.roles.Contains(role) }
func (u *User) RemoveRole(role string)       { u.roles = u.roles.Remove(role) }

func (u *User) AddRole(role string) error {
	roles, err := u.roles.Add(role)
	if err != nil {
		return err
	}
	u.roles = roles
	return nil
}
