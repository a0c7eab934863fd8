package valueobject

import (
	"strings"
	"unicode/utf8"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

const minUserNameLen = 2

// UserName is a trimmed human-readable name of at least two characters.
type UserName struct {
	value string
}

func NewUserName(raw string) (UserName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return UserName{}, apperr.InvalidValue("User name cannot be empty.")
	}
	if utf8.RuneCountInString(v) < minUserNameLen {
		return UserName{}, apperr.InvalidValue("User name must be at least %d characters.", minUserNameLen)
	}
	return UserName{value: v}, nil
}

func (n UserName) Value() string  { return n.value }
func (n UserName) String() string { return n.value }

// Equals compares case-insensitively.
func (n UserName) Equals(other UserName) bool {
	return strings.EqualFold(n.value, other.value)
}

type RoleName struct {
	value string
}

func NewRoleName(raw string) (RoleName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return RoleName{}, apperr.InvalidValue("Role name cannot be empty.")
	}
	return RoleName{value: v}, nil
}

func (n RoleName) Value() string              { return n.value }
func (n RoleName) String() string             { return n.value }
func (n RoleName) Equals(other RoleName) bool { return n.value == other.value }

type PermissionName struct {
	value string
}

func NewPermissionName(raw string) (PermissionName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return PermissionName{}, apperr.InvalidValue("Permission name cannot be empty.")
	}
	return PermissionName{value: v}, nil
}

func (n PermissionName) Value() string                    { return n.value }
func (n PermissionName) String() string                   { return n.value }
func (n PermissionName) Equals(other PermissionName) bool { return n.value == other.value }
