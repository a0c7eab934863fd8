package valueobject

import (
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

// RoleSet is an ordered set of role names held by a user.
type RoleSet struct {
	names []string
}

func NewRoleSet(names []string) (RoleSet, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return RoleSet{}, apperr.InvalidValue("Invalid role value provided.")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return RoleSet{names: out}, nil
}

// Names returns a copy of the role names.
func (s RoleSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s RoleSet) Len() int { return len(s.names) }

func (s RoleSet) Contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func (s RoleSet) Add(name string) (RoleSet, error) {
	return NewRoleSet(append(s.Names(), name))
}

func (s RoleSet) Remove(name string) RoleSet {
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		if n != name {
			out = append(out, n)
		}
	}
	return RoleSet{names: out}
}

func (s RoleSet) String() string { return strings.Join(s.names, ", ") }
