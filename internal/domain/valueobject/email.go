package valueobject

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

var validate = validator.New()

// Email is a normalized (trimmed, lower-cased) address that passed format validation.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Email{}, apperr.InvalidValue("User email cannot be empty.")
	}
	if err := validate.Var(v, "email"); err != nil {
		return Email{}, apperr.InvalidValue("Invalid email format: %s", v)
	}
	return Email{value: v}, nil
}

func (e Email) Value() string           { return e.value }
func (e Email) String() string          { return e.value }
func (e Email) Equals(other Email) bool { return e.value == other.value }
