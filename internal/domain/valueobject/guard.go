package valueobject

import (
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

// DefaultGuard is used whenever a role or permission is created without a guard.
const DefaultGuard = "api"

// GuardName scopes role and permission uniqueness (e.g. "api", "web").
type GuardName struct {
	value string
}

func NewGuardName(raw string) (GuardName, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return GuardName{}, apperr.InvalidValue("Guard name cannot be empty.")
	}
	return GuardName{value: v}, nil
}

// GuardOrDefault builds a guard, substituting DefaultGuard for blank input.
func GuardOrDefault(raw string) GuardName {
	if g, err := NewGuardName(raw); err == nil {
		return g
	}
	return GuardName{value: DefaultGuard}
}

func (g GuardName) Value() string               { return g.value }
func (g GuardName) String() string              { return g.value }
func (g GuardName) Equals(other GuardName) bool { return g.value == other.value }
