package valueobject

import (
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

// AuthToken is an opaque bearer token. Its format belongs to the token manager.
type AuthToken struct {
	value string
}

func NewAuthToken(raw string) (AuthToken, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return AuthToken{}, apperr.InvalidValue("Auth token cannot be empty.")
	}
	return AuthToken{value: v}, nil
}

func (t AuthToken) Value() string  { return t.value }
func (t AuthToken) String() string { return t.value }
